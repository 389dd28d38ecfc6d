package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinels for errors.Is. Adapters map them to transport status codes.
var (
	// ErrNotFound means no quote has the requested id.
	ErrNotFound = errors.New("not found")

	// ErrStorage means the store failed to run a statement. Lost
	// connections, constraint violations and timeouts all land here.
	ErrStorage = errors.New("storage failure")
)

// NotFoundError names the quote id that matched no row.
type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("quote %s not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError reports that no quote has id.
func NewNotFoundError(id uuid.UUID) error {
	return &NotFoundError{ID: id}
}

// StorageError records which store operation failed. Cause is kept for
// logs and never shown to API clients. Store adapters already name the
// operation in Cause, so Error does not repeat it.
type StorageError struct {
	Operation string
	Cause     error
}

func (e *StorageError) Error() string {
	if e.Cause == nil {
		return "storage: " + e.Operation + " quote failed"
	}

	return fmt.Sprintf("storage: %v", e.Cause)
}

// Unwrap matches ErrStorage as well as the driver cause, so callers can
// still test for context.Canceled or a *pgconn.PgError.
func (e *StorageError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrStorage}
	}

	return []error{ErrStorage, e.Cause}
}

// NewStorageError wraps a store failure during operation.
func NewStorageError(operation string, cause error) error {
	return &StorageError{Operation: operation, Cause: cause}
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsStorage reports whether err is or wraps ErrStorage.
func IsStorage(err error) bool { return errors.Is(err, ErrStorage) }
