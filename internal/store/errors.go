package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUser is returned when registering an email that already exists.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrDuplicateChannel is returned when creating a channel with a taken name.
	ErrDuplicateChannel = errors.New("channel already exists")
	// ErrStorage matches any *StorageError.
	ErrStorage = errors.New("storage failure")
)

// StorageError wraps an underlying driver or transport failure.
type StorageError struct {
	Op  string
	Err error
}

// Wrap builds a StorageError for the given operation.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrStorage.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
