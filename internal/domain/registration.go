package domain

import "context"

// Registrar atomically mutates a profile's registration list and a
// conference's seat counter. Both the membership check and the seat mutation
// happen inside one transaction spanning the two records; no caller ever
// observes decremented seats without the matching profile entry.
type Registrar interface {
	// Register registers the user for the conference and takes one seat.
	// Returns ErrAlreadyRegistered or ErrNoSeatsAvailable (both ErrConflict)
	// on business-rule rejection, ErrNotFound for an unknown conference, and
	// ErrAborted when the transaction cannot commit within the retry budget.
	Register(ctx context.Context, userID string, confKey Key) error
	// Unregister removes the registration and returns one seat. Removing a
	// registration that does not exist is not an error: it reports false
	// with no mutation.
	Unregister(ctx context.Context, userID string, confKey Key) (removed bool, err error)
}

// AttendeeService defines attendee-facing operations: conference
// registration and the session wishlist.
type AttendeeService interface {
	RegisterForConference(ctx context.Context, userID string, confKey Key) error
	UnregisterFromConference(ctx context.Context, userID string, confKey Key) (bool, error)
	ListConferencesToAttend(ctx context.Context, userID string) ([]*Conference, error)
	AddSessionToWishlist(ctx context.Context, identity Identity, sessionKey Key) (*Session, error)
	ListSessionWishlist(ctx context.Context, identity Identity) ([]*Session, error)
}
