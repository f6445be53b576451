package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrMissingField    = errors.New("missing required fields")
	ErrValidation      = errors.New("invalid product")
	ErrConflict        = errors.New("product code already in use")
	ErrStorage         = errors.New("catalog store failure")
)

// MissingFieldError names the required keys or columns absent from the input.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// ValidationError aggregates the business rules a product breaks.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid product: %s", strings.Join(e.Reasons, ", "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConflictError reports a code already held by another row, active or not.
type ConflictError struct {
	Code string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("a product with code %q already exists", e.Code)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// StorageError wraps an unexpected failure of the catalog store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// IsRowError reports whether err only invalidates the record it was raised for.
// Batches record these and move on; anything else stops the batch.
func IsRowError(err error) bool {
	return errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConflict)
}
