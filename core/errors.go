package core

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// GenericFailureMessage is what callers see when a database error has no
// friendly translation. The underlying error is logged server-side only.
const GenericFailureMessage = "operation failed, please try again"

// NotFoundError means the referenced entity is absent (HTTP 404).
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " does not exist"
}

// ConflictError is a unique-constraint violation surfaced as a friendly
// message (HTTP 400).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// UnavailableError means a dependency (database, blob store) is unreachable
// or not configured (HTTP 503).
type UnavailableError struct {
	Dependency string
	Err        error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Dependency, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

func IsUnavailable(err error) bool {
	var u *UnavailableError
	return errors.As(err, &u)
}

// IsDuplicateKey reports whether err is a translated unique-constraint
// violation. Requires TranslateError on the gorm config, which
// NewDatabaseManager sets.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
