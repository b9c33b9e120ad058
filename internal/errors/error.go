package errors

import "fmt"

// Category represents the type of error.
type Category string

const (
	// CategoryInvariant marks an inconsistency in the upstream build graph.
	// Invariant errors are fatal and never retried: the build produced an
	// internally inconsistent output set.
	CategoryInvariant Category = "invariant"

	CategoryConfig    Category = "config"
	CategoryPackaging Category = "packaging"
	CategoryUpload    Category = "upload"
	CategoryCLI       Category = "cli"
)

// Error is a structured error with a stable code, category, and suggestion.
type Error struct {
	// Code is a unique error identifier (e.g. "N001").
	Code string

	// Category is the error type (invariant, config, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// IsInvariant reports whether err is (or wraps) an invariant violation.
func IsInvariant(err error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Category == CategoryInvariant {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// WithDetail adds a detailed explanation to the error.
func (e *Error) WithDetail(format string, args ...any) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Error{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new Error with a formatted message (no code).
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}
