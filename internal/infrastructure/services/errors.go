package services

import (
	"runtime/debug"
	"strings"
)

// The three failure classes of request processing. All of them are caught at
// the outermost request boundary, logged, and turned into the wire error
// shape; none of them may escape past it.

// ParseError indicates a malformed request body.
type ParseError struct {
	Message string
	Stack   []byte
}

// NewParseError creates a ParseError capturing the current stack.
func NewParseError(msg string) *ParseError {
	return &ParseError{Message: msg, Stack: debug.Stack()}
}

func (e *ParseError) Error() string { return e.Message }

// ValidationError indicates a handler produced a structurally invalid result.
// It lists every violated rule, not just the first, and carries the request
// and result for the error body.
type ValidationError struct {
	Violations []string
	Request    any
	Result     any
	Stack      []byte
}

// NewValidationError creates a ValidationError capturing the current stack.
func NewValidationError(violations []string) *ValidationError {
	return &ValidationError{Violations: violations, Stack: debug.Stack()}
}

func (e *ValidationError) Error() string {
	return "invalid handler result: " + strings.Join(e.Violations, "; ")
}

// RuntimeError indicates an unexpected failure in handler logic or rendering,
// including recovered panics.
type RuntimeError struct {
	Message string
	Stack   []byte
}

// NewRuntimeError creates a RuntimeError capturing the current stack.
func NewRuntimeError(msg string) *RuntimeError {
	return &RuntimeError{Message: msg, Stack: debug.Stack()}
}

func (e *RuntimeError) Error() string { return e.Message }
