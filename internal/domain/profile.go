package domain

import (
	"context"
	"time"
)

// TeeShirtSizeNotSpecified is the default tee-shirt size for new profiles.
const TeeShirtSizeNotSpecified = "NOT_SPECIFIED"

// Profile represents a user's profile. Profiles are created lazily on first
// access with defaulted fields and are never deleted. The two key lists are
// duplicate-free by service enforcement, not by storage constraint.
type Profile struct {
	UserID                 string    `json:"user_id"`
	DisplayName            string    `json:"display_name"`
	MainEmail              string    `json:"main_email"`
	TeeShirtSize           string    `json:"tee_shirt_size"`
	ConferenceKeysToAttend []Key     `json:"conference_keys_to_attend"`
	SessionsToAttend       []Key     `json:"sessions_to_attend"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// NewProfile returns a defaulted profile for the given identity.
func NewProfile(identity Identity) *Profile {
	return &Profile{
		UserID:       identity.UserID,
		DisplayName:  identity.Nickname,
		MainEmail:    identity.Email,
		TeeShirtSize: TeeShirtSizeNotSpecified,
	}
}

// ProfileRepository defines the interface for profile storage.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	// GetOrCreate returns the stored profile, creating it from defaults
	// when absent. Safe under concurrent first access: defaults are
	// idempotent, so a duplicate-defaulting race is benign.
	GetOrCreate(ctx context.Context, defaults *Profile) (*Profile, error)
	Update(ctx context.Context, profile *Profile) error
}

// ProfileService defines the business logic for user profiles.
type ProfileService interface {
	GetProfile(ctx context.Context, identity Identity) (*Profile, error)
	SaveProfile(ctx context.Context, identity Identity, displayName, teeShirtSize string) (*Profile, error)
}
