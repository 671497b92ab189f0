// Package errors defines the classified error types surfaced by the
// aggregation core. Per-provider failures are absorbed at the provider-call
// boundary; only aggregate-level emptiness or misconfiguration reaches callers.
package errors

import (
	"errors"
	"fmt"
)

// ResolveError classifies a failure of a public aggregation operation.
type ResolveError struct {
	Type    string
	Message string
	Cause   error
}

func (e *ResolveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *ResolveError) Unwrap() error {
	return e.Cause
}

// Error type constants.
const (
	// ErrorTypeTransient marks a single upstream request failure. It is
	// absorbed at the call boundary and never surfaced individually.
	ErrorTypeTransient = "TRANSIENT_PROVIDER_FAILURE"
	// ErrorTypeTranslation marks an identifier that could not be mapped
	// to a provider-native scheme.
	ErrorTypeTranslation = "ID_TRANSLATION_FAILED"
	// ErrorTypeEmptyResult marks an aggregate operation that produced
	// zero usable rows, records or streams after absorbing all transient
	// failures.
	ErrorTypeEmptyResult = "EMPTY_RESULT"
	// ErrorTypeNotConfigured marks an aggregate operation that had no
	// eligible upstream configured at all.
	ErrorTypeNotConfigured = "NOTHING_CONFIGURED"
	// ErrorTypeConfigValidation marks a rejected configuration mutation;
	// the original state is left untouched.
	ErrorTypeConfigValidation = "CONFIGURATION_INVALID"
)

// NewTransient creates a transient per-provider error.
func NewTransient(message string, cause error) *ResolveError {
	return &ResolveError{Type: ErrorTypeTransient, Message: message, Cause: cause}
}

// NewTranslation creates an identifier translation error.
func NewTranslation(message string, cause error) *ResolveError {
	return &ResolveError{Type: ErrorTypeTranslation, Message: message, Cause: cause}
}

// NewEmptyResult creates an error for an operation that returned nothing
// despite configured upstreams.
func NewEmptyResult(message string) *ResolveError {
	return &ResolveError{Type: ErrorTypeEmptyResult, Message: message}
}

// NewNotConfigured creates an error for an operation with no eligible
// upstreams configured.
func NewNotConfigured(message string) *ResolveError {
	return &ResolveError{Type: ErrorTypeNotConfigured, Message: message}
}

// NewConfigValidation creates a configuration validation error.
func NewConfigValidation(message string, cause error) *ResolveError {
	return &ResolveError{Type: ErrorTypeConfigValidation, Message: message, Cause: cause}
}

// IsType reports whether err is a ResolveError of the given type.
func IsType(err error, errorType string) bool {
	var re *ResolveError
	if errors.As(err, &re) {
		return re.Type == errorType
	}
	return false
}
