package domain

import "context"

// Cache is a shared advisory cache slot store. Entries carry no embedded
// expiry; concurrent writers race and the last writer wins, which is
// acceptable because cached values are informational, never
// invariant-bearing.
type Cache interface {
	// Get returns the cached value and whether the key was present.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// AnnouncementService maintains the "nearly sold out" announcement.
type AnnouncementService interface {
	// RecomputeAnnouncement rebuilds the announcement from current seat
	// inventory and stores it, deleting the cache entry when no conference
	// is nearly sold out. Returns the new announcement ("" when none).
	RecomputeAnnouncement(ctx context.Context) (string, error)
	// Announcement returns the cached announcement or "" when absent. It
	// never recomputes.
	Announcement(ctx context.Context) (string, error)
}
