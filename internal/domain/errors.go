package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services and repositories. Services wrap
// them with call-site context; callers discriminate with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("authorization required")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")

	// ErrAborted means a transaction could not commit within the retry
	// budget. Unlike ErrConflict the whole operation may be retried.
	ErrAborted = errors.New("transaction aborted")
)

// Registration rejections. Both match ErrConflict under errors.Is.
var (
	ErrAlreadyRegistered = fmt.Errorf("%w: already registered for this conference", ErrConflict)
	ErrNoSeatsAvailable  = fmt.Errorf("%w: no seats available", ErrConflict)
)
