package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrInvalidConfig         = goerr.New("invalid configuration")
	ErrDuplicateJurisdiction = goerr.New("duplicate jurisdiction ID")
	ErrMissingName           = goerr.New("name is required")
	ErrInvalidLogLevel       = goerr.New("invalid log level")
	ErrInvalidLogFormat      = goerr.New("invalid log format")
)

// Context keys for error values
const (
	ConfigPathKey   = "config_path"
	JurisdictionKey = "jurisdiction"
	IndexKey        = "index"
	BackendKey      = "backend"
)
