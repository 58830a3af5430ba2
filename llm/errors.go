package llm

import (
	"errors"
	"fmt"
)

// Error types for classifying LLM failures.

// TransientError represents a temporary error that may succeed on retry.
type TransientError struct {
	err error
}

func (e *TransientError) Error() string {
	return e.err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.err
}

// NewTransientError wraps an error as transient (retryable).
func NewTransientError(err error) error {
	return &TransientError{err: err}
}

// FatalError represents a permanent error that should not be retried.
type FatalError struct {
	err error
}

func (e *FatalError) Error() string {
	return e.err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.err
}

// NewFatalError wraps an error as fatal (non-retryable).
func NewFatalError(err error) error {
	return &FatalError{err: err}
}

// IsTransient returns true if the error is transient and should be retried.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

// IsFatal returns true if the error is fatal and should not be retried.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

// ParseError reports that a model response was not valid strict JSON after
// the reminder retry. It is non-fatal: the pipeline skips the chunk and
// records a warning.
type ParseError struct {
	ChunkID  string
	Attempts int
	err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("chunk %s: response not parseable after %d attempts: %v", e.ChunkID, e.Attempts, e.err)
}

func (e *ParseError) Unwrap() error {
	return e.err
}

// NewParseError wraps a parse failure for a specific chunk.
func NewParseError(chunkID string, attempts int, err error) error {
	return &ParseError{ChunkID: chunkID, Attempts: attempts, err: err}
}

// IsParseError returns true if the error is a response parse failure.
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}
