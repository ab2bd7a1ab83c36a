package errors

import (
	"github.com/cockroachdb/errors"
)

// Sentinel errors used to classify every error produced by the engine.
// Callers test against these with the Is* helpers, never by string.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrDatabase         = errors.New("database error")
	ErrPermissionDenied = errors.New("permission denied")
	ErrIntegrity        = errors.New("data integrity anomaly")
	ErrInternal         = errors.New("internal error")
)

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}

func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

func IsIntegrity(err error) bool {
	return errors.Is(err, ErrIntegrity)
}

// Is re-exports errors.Is so callers do not need a second errors import
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As re-exports errors.As
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
