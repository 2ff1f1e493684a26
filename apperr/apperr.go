// Package apperr defines the error taxonomy shared by the store and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrAuthenticationRequired = errors.New("authentication credentials were not provided or are invalid")
	ErrPermissionDenied       = errors.New("you do not have permission to perform this action")
	ErrNotFound               = errors.New("not found")

	// ErrInvalidCredentials is a failed login.
	ErrInvalidCredentials error = &kindError{"no active account found with the given credentials", ErrAuthenticationRequired}

	// ErrInvalidPage is a page number outside the result set.
	ErrInvalidPage error = &kindError{"invalid page", ErrNotFound}

	// ErrSystemAccountMissing means the fallback audit account is not provisioned.
	// It is a deployment error, never a client one.
	ErrSystemAccountMissing = errors.New("fallback system account is missing")
)

// kindError is a specific message for one of the sentinel kinds above.
type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// ValidationError is a client error tied to an input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Validation builds a *ValidationError.
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// pgUniqueViolation is the postgres SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// FromDB translates storage errors into the taxonomy. Unknown errors are
// returned unchanged.
func FromDB(err error, field string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if IsUniqueViolation(err) {
		return Validation(field, "a record with this %s already exists", field)
	}
	return err
}

// IsUniqueViolation detects unique constraint failures from postgres and sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrAuthenticationRequired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
