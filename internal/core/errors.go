package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrEmptyDescription    = errors.New("empty description")
	ErrDescriptionTooLong  = errors.New("description too long (max 200 characters)")
	ErrEmptyName           = errors.New("empty name")
	ErrInvalidClosingDay   = errors.New("closing day must be between 1 and 31")
	ErrInvalidInstallments = errors.New("installments must be between 2 and 24")
	ErrInvalidKind         = errors.New("kind must be expense or income")
	ErrInvalidAccountType  = errors.New("invalid account type")
	ErrInvalidMethodType   = errors.New("invalid payment method type")
	ErrInvalidColor        = errors.New("color must be #rrggbb")
	ErrInvalidLast4        = errors.New("last4 must be exactly 4 digits")
	ErrMissingHousehold    = errors.New("missing household")
	ErrMissingCategory     = errors.New("missing category")
	ErrMissingInstrument   = errors.New("an account or a payment method is required")
	ErrInvalidDate         = errors.New("invalid date")
	ErrUnknownProduct      = errors.New("unknown card product")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrWeakPassword        = errors.New("password must have at least 8 characters")
)

// ValidationError ties a validation failure to the field that caused it.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// Invalid builds a ValidationError for callers outside this package.
func Invalid(field string, err error) error {
	return invalid(field, err)
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// RecordError reports a stored row that does not form a valid entity.
type RecordError struct {
	Entity string
	ID     string
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("malformed %s record %q: %v", e.Entity, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }
