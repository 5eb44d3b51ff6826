package model

import "github.com/m-mizutani/goerr/v2"

// Ingestion and configuration errors. Wrapped errors are matched with
// errors.Is.
var (
	// ErrConfig means the source configuration for a jurisdiction is missing
	// or invalid. It is never retried.
	ErrConfig = goerr.New("invalid source configuration")

	// ErrFetch means the document could not be retrieved after all attempts.
	ErrFetch = goerr.New("failed to fetch requirements")

	// ErrParse means the document was retrieved but is empty or unparseable.
	// It is never retried.
	ErrParse = goerr.New("failed to parse requirements")
)

// Context keys for error values
const (
	JurisdictionKey = "jurisdiction"
	URLKey          = "url"
	AttemptKey      = "attempt"
	StatusCodeKey   = "status_code"
)
