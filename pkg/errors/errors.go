package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType classifies failures of the scraping pipeline
type ErrorType string

const (
	ErrorTypeAuth          ErrorType = "authentication"
	ErrorTypeGroupNotFound ErrorType = "group_not_found"
	ErrorTypeAccessDenied  ErrorType = "access_denied"
	ErrorTypeFloodWait     ErrorType = "flood_wait"
	ErrorTypeNetwork       ErrorType = "network"
	ErrorTypeParsing       ErrorType = "parsing"
	ErrorTypePersistence   ErrorType = "persistence"
	ErrorTypeUnknown       ErrorType = "unknown"
)

// Error is a classified pipeline error. Group and Phase carry enough context
// to diagnose which scrape and which stage failed.
type Error struct {
	Type    ErrorType
	Message string
	Group   string
	Phase   string
	Wait    time.Duration // mandated pause for flood_wait errors
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error: %s", e.Type, e.Message)
	if e.Group != "" {
		msg += fmt.Sprintf(" (group %s)", e.Group)
	}
	if e.Phase != "" {
		msg += fmt.Sprintf(" [phase %s]", e.Phase)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error.
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Wrap classifies an underlying error.
func Wrap(t ErrorType, message string, err error) *Error {
	return &Error{Type: t, Message: message, Err: err}
}

// FloodWait creates a flood-control error carrying the mandated pause.
func FloodWait(wait time.Duration) *Error {
	return &Error{
		Type:    ErrorTypeFloodWait,
		Message: fmt.Sprintf("flood control, wait %s", wait),
		Wait:    wait,
	}
}

// WithContext returns a copy annotated with group identifier and phase name.
func (e *Error) WithContext(group, phase string) *Error {
	clone := *e
	clone.Group = group
	clone.Phase = phase
	return &clone
}

// TypeOf returns the classification of err, or ErrorTypeUnknown when err is
// not a pipeline error.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err is a pipeline error of the given type.
func Is(err error, t ErrorType) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == t
}

// AsFloodWait extracts the mandated pause from a flood-control error.
func AsFloodWait(err error) (time.Duration, bool) {
	var e *Error
	if errors.As(err, &e) && e.Type == ErrorTypeFloodWait {
		return e.Wait, true
	}
	return 0, false
}

// IsRetryable checks if an error type should be retried. Flood-wait is
// deliberately excluded: it is handled by the flood guard, not by the
// generic retrier.
func IsRetryable(errorType ErrorType) bool {
	return errorType == ErrorTypeNetwork
}
