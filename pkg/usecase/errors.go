package usecase

import "errors"

// Sentinel errors for use case layer
var (
	ErrRequirementNotFound = errors.New("requirement not found")
	ErrServiceUnavailable  = errors.New("service is not configured")
)

// Context keys for error values
const (
	ControlIDKey = "control_id"
)
