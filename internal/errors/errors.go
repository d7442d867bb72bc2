package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ConductorError is the structured error type for conductorboot.
// It carries enough context for logging, CLI presentation and test assertions.
type ConductorError struct {
	// Code is the unique error code (e.g., "ERR_104_INVALID_BACKEND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the operator.
	Suggestion string
}

// Sentinels for errors.Is checks. Matching is by code only.
var (
	ErrInvalidBackend    = &ConductorError{Code: ErrCodeInvalidBackend}
	ErrEmbeddedBootstrap = &ConductorError{Code: ErrCodeEmbeddedBootstrap}
	ErrDataDirLocked     = &ConductorError{Code: ErrCodeDataDirLocked}
)

// Error implements the error interface.
func (e *ConductorError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ConductorError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a ConductorError with the same code.
func (e *ConductorError) Is(target error) bool {
	if t, ok := target.(*ConductorError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *ConductorError) WithDetail(key, value string) *ConductorError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the operator.
func (e *ConductorError) WithSuggestion(suggestion string) *ConductorError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ConductorError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *ConductorError {
	return &ConductorError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a ConductorError from an existing error.
func Wrap(code string, err error) *ConductorError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *ConductorError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *ConductorError {
	return New(ErrCodeInternal, message, cause)
}

// InvalidBackend reports a configured db value that names no known backend.
// The message always lists the raw value and every supported identifier.
func InvalidBackend(raw string, supported []string) *ConductorError {
	list := "[" + strings.Join(supported, " ") + "]"
	return New(ErrCodeInvalidBackend,
		fmt.Sprintf("invalid db name: %s, supported values are: %s", raw, list), nil).
		WithDetail("db", raw).
		WithDetail("supported", list).
		WithSuggestion("set db (or CONDUCTOR_DB) to one of " + list)
}

// EmbeddedBootstrap reports a failure starting the embedded index engine.
// It is a warning: callers keep going with degraded search.
func EmbeddedBootstrap(message string, cause error) *ConductorError {
	return New(ErrCodeEmbeddedBootstrap, message, cause).
		WithSuggestion("configure an external index via index.url, or free the embedded listen address")
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	if ce, ok := as(err); ok {
		return ce.Severity == SeverityFatal
	}
	return false
}

// IsWarning checks if an error only signals degraded operation.
func IsWarning(err error) bool {
	if ce, ok := as(err); ok {
		return ce.Severity == SeverityWarning
	}
	return false
}

// GetCode extracts the error code from a ConductorError anywhere in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	if ce, ok := as(err); ok {
		return ce.Code
	}
	return ""
}

func as(err error) (*ConductorError, bool) {
	if err == nil {
		return nil, false
	}
	var ce *ConductorError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
