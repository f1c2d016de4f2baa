// Package errors provides error types and handling for transfer operations.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Error represents a transfer operation error with context about the
// operation that failed. It wraps the underlying store or filesystem error
// with additional context for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "download", "expand", "startCopy")
	Op string

	// Container is the object-store container name (if applicable)
	Container string

	// Key is the object key or key prefix (if applicable)
	Key string

	// Err is the underlying error from the store, filesystem, or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Container != "" && e.Key != "" {
		return fmt.Sprintf("transfer.%s %s/%s: %v", e.Op, e.Container, e.Key, e.Err)
	}
	if e.Container != "" {
		return fmt.Sprintf("transfer.%s container %s: %v", e.Op, e.Container, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("transfer.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("transfer.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithContainer adds container context to an existing error.
func (e *Error) WithContainer(container string) *Error {
	e.Container = container
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewContainerError creates a new Error with container context.
func NewContainerError(op, container string, err error) *Error {
	return &Error{
		Op:        op,
		Container: container,
		Err:       err,
	}
}

// NewObjectError creates a new Error with container and key context.
func NewObjectError(op, container, key string, err error) *Error {
	return &Error{
		Op:        op,
		Container: container,
		Key:       key,
		Err:       err,
	}
}

// Sentinel errors for common transfer operation failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrNotFound indicates that the requested object does not exist
	ErrNotFound = errors.New("transfer: object not found")

	// ErrContainerNotFound indicates that the requested container does not exist
	ErrContainerNotFound = errors.New("transfer: container not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("transfer: invalid input")

	// ErrInvalidContainerName indicates that the container name is invalid
	ErrInvalidContainerName = errors.New("transfer: invalid container name")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("transfer: invalid object key")

	// ErrNotDirectory indicates a directory operation was attempted on a file node
	ErrNotDirectory = errors.New("transfer: not a directory")

	// ErrAlreadyExists indicates that the destination object already exists
	ErrAlreadyExists = errors.New("transfer: object already exists")

	// ErrCopyFailed indicates that a server-side copy finished in a failed state
	ErrCopyFailed = errors.New("transfer: copy failed")

	// ErrCopyTimeout indicates that a server-side copy exceeded its polling budget
	ErrCopyTimeout = errors.New("transfer: copy timed out")

	// ErrCancelled indicates that the job was cancelled before the work unit ran
	ErrCancelled = errors.New("transfer: cancelled")

	// ErrClientInit indicates that no usable store client was available
	ErrClientInit = errors.New("transfer: store client unavailable")

	// ErrJobFailed indicates that every work unit in a job failed
	ErrJobFailed = errors.New("transfer: job failed")
)

// IsNotFound checks if an error indicates that an object was not found.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput checks if an error indicates invalid input.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidContainerName) ||
		errors.Is(err, ErrInvalidObjectKey)
}

// IsNotDirectory checks if an error came from expanding a non-directory node.
func IsNotDirectory(err error) bool {
	return errors.Is(err, ErrNotDirectory)
}

// IsCancelled checks if an error indicates job cancellation. Work in
// flight when a job is cancelled fails with the job context's error, so
// context cancellation counts too.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}
