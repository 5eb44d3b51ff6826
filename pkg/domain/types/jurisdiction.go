package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// JurisdictionID identifies a governed region with its own framework set and
// data source, e.g. "california".
type JurisdictionID string

var idPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Validate checks if the JurisdictionID is valid
func (j JurisdictionID) Validate() error {
	if j == "" {
		return goerr.New("jurisdiction ID cannot be empty")
	}
	if !idPattern.MatchString(string(j)) {
		return goerr.New("jurisdiction ID must be lowercase alphanumeric with hyphens", goerr.V("id", j))
	}
	return nil
}

// String returns the string representation of JurisdictionID
func (j JurisdictionID) String() string {
	return string(j)
}
