package errors

import (
	"errors"
	"fmt"
)

// Service-level errors

var (
	// ErrNotReady indicates the service has not finished loading its artifacts
	ErrNotReady = errors.New("service not ready")

	// ErrRateLimited indicates the request was rejected by the rate limiter
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")
)

// ArtifactLoadError indicates a trained artifact (classifier or preprocessing
// transform) could not be read or deserialized. Raised only during startup;
// the process must not serve requests after one of these.
type ArtifactLoadError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *ArtifactLoadError) Error() string {
	return fmt.Sprintf("failed to load artifact %s: %v", e.Path, e.Err)
}

// Unwrap returns the wrapped error
func (e *ArtifactLoadError) Unwrap() error {
	return e.Err
}

// SchemaError indicates a request body that does not match the expected
// feature schema: a missing required field or a value that cannot be
// converted. Always names the offending field.
type SchemaError struct {
	Field  string
	Reason string
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid feature %q: %s", e.Field, e.Reason)
}

// TransformError indicates a value the fitted preprocessing transform cannot
// encode, e.g. a category outside the encoder's known domain.
type TransformError struct {
	Field string
	Value string
}

// Error implements the error interface
func (e *TransformError) Error() string {
	return fmt.Sprintf("cannot transform feature %q: unknown value %q", e.Field, e.Value)
}

// InferenceError indicates a feature vector whose shape does not match the
// fitted model's input dimensionality. Points at an artifact mismatch, not
// at the caller.
type InferenceError struct {
	Got  int
	Want int
}

// Error implements the error interface
func (e *InferenceError) Error() string {
	return fmt.Sprintf("feature vector length %d does not match model input dimension %d", e.Got, e.Want)
}

// FormatError indicates a raw model output that cannot be mapped back to a
// known label, i.e. a class index outside the label table. Never
// caller-correctable.
type FormatError struct {
	Index  int
	Reason string
}

// Error implements the error interface
func (e *FormatError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot format prediction for class index %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("class index %d outside label table", e.Index)
}

// IsCallerFault reports whether err belongs to the caller-correctable class
// of pipeline errors (bad request), as opposed to server-side faults.
func IsCallerFault(err error) bool {
	var schemaErr *SchemaError
	var transformErr *TransformError
	return errors.As(err, &schemaErr) || errors.As(err, &transformErr)
}

// FieldOf returns the offending field name for field-level errors, or "".
func FieldOf(err error) string {
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		return schemaErr.Field
	}
	var transformErr *TransformError
	if errors.As(err, &transformErr) {
		return transformErr.Field
	}
	return ""
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
