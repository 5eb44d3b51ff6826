package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// SourceKind selects which ingestion path provides requirement rows
type SourceKind string

const (
	SourceKindCSV   SourceKind = "csv"
	SourceKindTable SourceKind = "table"
)

// Validate checks if the SourceKind is supported
func (s SourceKind) Validate() error {
	switch s {
	case SourceKindCSV, SourceKindTable:
		return nil
	default:
		return goerr.New("unsupported source kind", goerr.V("kind", s))
	}
}

// StoreBackend selects how CSV documents are read from the object store
type StoreBackend string

const (
	StoreBackendHTTP StoreBackend = "http"
	StoreBackendS3   StoreBackend = "s3"
	StoreBackendGCS  StoreBackend = "gcs"
)

// Validate checks if the StoreBackend is supported
func (s StoreBackend) Validate() error {
	switch s {
	case StoreBackendHTTP, StoreBackendS3, StoreBackendGCS:
		return nil
	default:
		return goerr.New("unsupported object store backend", goerr.V("backend", s))
	}
}
