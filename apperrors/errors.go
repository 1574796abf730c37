package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that an invoice id did not resolve to a record.
// Callers treat it as a normal outcome, not a failure.
var ErrNotFound = errors.New("record not found")

// ValidationError reports malformed or missing input. Nothing is persisted
// and no external call is made once one of these is raised.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func NewValidation(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// GatewayError reports a payment-processor failure. Config distinguishes an
// operator-fixable setup problem (missing credential) from a transient one.
type GatewayError struct {
	Op     string
	Config bool
	Err    error
}

func (e *GatewayError) Error() string {
	if e.Config {
		return fmt.Sprintf("payment gateway misconfigured (%s): %v", e.Op, e.Err)
	}
	return fmt.Sprintf("payment gateway %s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// StorageError wraps a record-store failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
