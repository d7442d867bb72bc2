// Package errors provides structured error handling for conductorboot.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (file, data directory)
//   - 4XX: Validation errors
//   - 5XX: Internal and embedded-engine errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and data directory errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates internal and embedded-engine errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates startup must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates the operation failed.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"
	ErrCodeInvalidBackend = "ERR_104_INVALID_BACKEND"

	// IO errors (200-299)
	ErrCodeIndexNotFound = "ERR_204_INDEX_NOT_FOUND"
	ErrCodeDataDirLocked = "ERR_207_DATA_DIR_LOCKED"

	// Validation errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"

	// Internal errors (500-599)
	ErrCodeInternal          = "ERR_501_INTERNAL"
	ErrCodeIndexFailed       = "ERR_505_INDEX_FAILED"
	ErrCodeEmbeddedBootstrap = "ERR_506_EMBEDDED_BOOTSTRAP"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Numeric portion, e.g. "104" from "ERR_104_INVALID_BACKEND"
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeInvalidBackend:
		return SeverityFatal
	case ErrCodeEmbeddedBootstrap:
		// Search runs degraded; startup continues.
		return SeverityWarning
	default:
		return SeverityError
	}
}
