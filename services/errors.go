package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/sports-meet/repositories"
	"github.com/Dosada05/sports-meet/storage"
)

// Shared errors used across services and by the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Specific not-found errors
	ErrDayNotFound       = errors.New("day not found")
	ErrRosterNotFound    = errors.New("roster not found")
	ErrAggregateNotFound = errors.New("aggregate document not found")
	ErrBackupNotFound    = errors.New("backup not found")

	// Invalid input
	ErrValidationFailed = errors.New("validation failed")

	// Persistence failures
	ErrIO    = errors.New("document storage failure")
	ErrParse = errors.New("stored document is not valid JSON")

	// Conflicts between fragments
	ErrDuplicateRosterName = errors.New("roster names are not unique")

	// Authentication
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAuthDisabled       = errors.New("admin authentication is not configured")
)

// storeError translates repository and storage errors into the service taxonomy.
// notFound is returned (wrapped) when the document is missing.
func storeError(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrDocumentNotFound), errors.Is(err, storage.ErrDocumentNotFound):
		return fmt.Errorf("%w: %w", notFound, err)
	case errors.Is(err, repositories.ErrMalformedDocument):
		return fmt.Errorf("%w: %w", ErrParse, err)
	case errors.Is(err, storage.ErrInvalidKey):
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	default:
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
}
