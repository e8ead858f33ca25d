package storage

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// Common schema source errors
var (
	ErrFileNotFound      = errors.New("schema not found")
	ErrInvalidKey        = errors.New("invalid schema key")
	ErrSourceUnavailable = errors.New("schema source unavailable")
	ErrTimeout           = errors.New("operation timeout")
	ErrUnsupportedSource = errors.New("unsupported schema source")
	ErrMissingEmbeddedFS = errors.New("no embedded schemas provided")
)

// StorageError carries the failed operation and key alongside the cause
type StorageError struct {
	Op        string
	Key       string
	Err       error
	Retryable bool
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("schema source %s failed for key '%s': %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("schema source %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error indicates a retryable condition
func (e *StorageError) IsRetryable() bool {
	return e.Retryable
}

// NewStorageError creates a new StorageError
func NewStorageError(op, key string, err error, retryable bool) *StorageError {
	return &StorageError{
		Op:        op,
		Key:       key,
		Err:       err,
		Retryable: retryable,
	}
}

// IsNotFound returns true if the error indicates a missing document
func IsNotFound(err error) bool {
	return errors.Is(err, ErrFileNotFound)
}

// IsRetryable returns true if the error indicates a retryable condition
func IsRetryable(err error) bool {
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return storageErr.IsRetryable()
	}

	return errors.Is(err, ErrSourceUnavailable) ||
		errors.Is(err, ErrTimeout)
}

// transient reports whether a failed read may succeed when repeated:
// interrupted or busy system calls and I/O timeouts.
func transient(err error) bool {
	switch {
	case errors.Is(err, syscall.EAGAIN),
		errors.Is(err, syscall.EINTR),
		errors.Is(err, syscall.EBUSY),
		errors.Is(err, os.ErrDeadlineExceeded):
		return true
	}
	var timeout interface{ Timeout() bool }
	return errors.As(err, &timeout) && timeout.Timeout()
}
