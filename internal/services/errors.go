package services

import (
	"errors"
	"fmt"

	"github.com/paydash/backend/internal/store"
)

var (
	// ErrNotFound also covers resources that exist in another organization.
	ErrNotFound          = store.ErrNotFound
	ErrConflict          = store.ErrConflict
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrValidation        = errors.New("validation failed")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
