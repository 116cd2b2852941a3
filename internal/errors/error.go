package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryRuntime  Category = "runtime"
	CategorySettings Category = "settings"
	CategoryStore    Category = "store"
	CategoryConfig   Category = "config"
	CategoryCLI      Category = "cli"
)

// InkError is a structured error with a registered code, a hint and an optional cause.
type InkError struct {
	// Code is a unique error identifier (e.g., "E101").
	Code string

	// Category is the error type (settings, store, etc.).
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
func (e *InkError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *InkError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is an InkError carrying the same code.
func (e *InkError) Is(target error) bool {
	t, ok := target.(*InkError)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// WithSuggestion adds a fix suggestion to the error.
func (e *InkError) WithSuggestion(s string) *InkError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *InkError) WithDetail(d string) *InkError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *InkError) Wrap(err error) *InkError {
	e.Wrapped = err
	return e
}

// New creates an InkError from a registered error code.
func New(code string) *InkError {
	template, ok := registry[code]
	if !ok {
		return &InkError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &InkError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new InkError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *InkError {
	return &InkError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an InkError.
// Errors that already are (or wrap) an InkError are returned unchanged.
func FromError(err error, code string) *InkError {
	if err == nil {
		return nil
	}
	var ie *InkError
	if stderrors.As(err, &ie) {
		return ie
	}
	return New(code).Wrap(err)
}

// CodeOf returns the code of the first InkError in err's chain, or "".
func CodeOf(err error) string {
	var ie *InkError
	if stderrors.As(err, &ie) {
		return ie.Code
	}
	return ""
}

// HasCode reports whether err's chain carries an InkError with the given code.
func HasCode(err error, code string) bool {
	return stderrors.Is(err, &InkError{Code: code})
}

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string

	// Subject names what Detail holds when it is a short identifier,
	// such as a setting path. Format renders it as "Subject: Detail".
	Subject string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// Runtime (E001-E099)
	"E001": {
		Category: CategoryRuntime,
		Message:  "Update listener panicked",
		Detail:   "A listener registered on a reactive value panicked while being notified. The remaining listeners were still notified.",
	},

	// Settings (E100-E199)
	"E101": {
		Category: CategorySettings,
		Message:  "Unknown setting path",
		Subject:  "Setting",
	},
	"E102": {
		Category: CategorySettings,
		Message:  "Invalid setting value",
		Subject:  "Setting",
	},

	// Store (E200-E299)
	"E201": {
		Category: CategoryStore,
		Message:  "Snapshot not found",
		Subject:  "Document",
	},
	"E202": {
		Category: CategoryStore,
		Message:  "Snapshot store failure",
		Subject:  "Request",
	},

	// Config (E300-E399)
	"E301": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	"E302": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
	},
}
