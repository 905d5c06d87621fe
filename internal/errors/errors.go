// internal/errors/errors.go
package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind represents which phase of the compiler a failure came from.
type Kind string

const (
	SelectorSearchFailed  Kind = "SelectorSearchFailed"
	MixerSearchFailed     Kind = "MixerSearchFailed"
	CompressorSearchFailed Kind = "CompressorSearchFailed"
	ValidationFailed      Kind = "ValidationFailed"
)

// CompileError represents a failure to compile a key set into a
// perfect-hash function, tagged with the phase that failed.
type CompileError struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap lets errors.Is/errors.As see through to Cause.
func (e *CompileError) Unwrap() error {
	return e.Cause
}

// New creates a new CompileError of the given kind.
func New(kind Kind, message string) *CompileError {
	return &CompileError{
		Kind:    kind,
		Message: message,
	}
}

// NewSelectorSearchFailed creates a SelectorSearchFailed error.
func NewSelectorSearchFailed(message string) *CompileError {
	return New(SelectorSearchFailed, message)
}

// NewMixerSearchFailed creates a MixerSearchFailed error.
func NewMixerSearchFailed(message string) *CompileError {
	return New(MixerSearchFailed, message)
}

// WithCause attaches an underlying error, wrapped with pkg/errors so the
// returned error keeps a stack trace pointing at the call that produced
// it.
func (e *CompileError) WithCause(cause error) *CompileError {
	e.Cause = pkgerrors.Wrap(cause, string(e.Kind))
	return e
}

// WithContext annotates the error's message with extra detail, for
// example which key or slot a validation failure was found at.
func (e *CompileError) WithContext(context string) *CompileError {
	e.Message = fmt.Sprintf("%s (%s)", e.Message, context)
	return e
}
