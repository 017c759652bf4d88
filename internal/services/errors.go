package services

import (
	"errors"
	"fmt"

	"carteira/internal/core"
	"carteira/internal/ports"
)

var (
	// ErrForbidden is returned when the caller is not a member of the
	// household.
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInviteInvalid covers unknown, expired and already used invites.
	ErrInviteInvalid = errors.New("invite is invalid or expired")
)

// reference turns a missing referenced row into a validation error on
// field. Other errors pass through.
func reference(field string, err error) error {
	if errors.Is(err, ports.ErrNotFound) {
		return core.Invalid(field, fmt.Errorf("%w: %v", ports.ErrNotFound, err))
	}
	return err
}
