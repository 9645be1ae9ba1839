package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an entity does not exist or is owned by a
// different owner. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("not found")

// ValidationError describes caller-fixable input problems.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageError reports a persistence failure. Unlike provider failures,
// storage failures abort the calling operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
