package domain

import (
	"errors"
	"fmt"
)

// ErrConstraintViolation matches any StorageError caused by a duplicate key,
// a dangling foreign key or an out-of-range value.
var ErrConstraintViolation = errors.New("constraint violation")

// StorageErrorKind classifies storage failures.
type StorageErrorKind string

const (
	StorageErrorConstraint StorageErrorKind = "constraint"
	StorageErrorInternal   StorageErrorKind = "internal"
)

// StorageError is returned by every failing store operation.
type StorageError struct {
	Op   string
	Kind StorageErrorKind
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrConstraintViolation) match constraint failures.
func (e *StorageError) Is(target error) bool {
	return target == ErrConstraintViolation && e.Kind == StorageErrorConstraint
}
