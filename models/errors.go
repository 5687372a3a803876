package models

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound well-formed id with no matching record
	ErrNotFound = errors.New("expense not found")
	// ErrInvalidID malformed expense id
	ErrInvalidID = errors.New("invalid expense id")
)

// ValidationError collects every violated field message.
type ValidationError struct {
	Messages []string
}

// NewValidationError builds a ValidationError from messages.
func NewValidationError(msgs ...string) *ValidationError {
	return &ValidationError{Messages: msgs}
}

// Add appends a field message.
func (e *ValidationError) Add(msg string) {
	e.Messages = append(e.Messages, msg)
}

// Empty reports whether no message was collected.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Messages) == 0
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ", ")
}
