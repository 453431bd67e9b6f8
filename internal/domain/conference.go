package domain

import (
	"context"
	"time"

	"conferencecentral/internal/query"
)

// Field defaults applied when a conference is created without them.
var (
	DefaultCity   = "Default City"
	DefaultTopics = []string{"Default", "Topic"}
)

// Conference represents a published conference with a finite seat inventory.
// Month is derived from StartDate (1-12, 0 when unset). SeatsAvailable is
// mutated only by the Registrar and satisfies
// 0 <= SeatsAvailable <= MaxAttendees.
type Conference struct {
	Key             Key        `json:"key"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	OrganizerUserID string     `json:"organizer_user_id"`
	City            string     `json:"city"`
	Topics          []string   `json:"topics"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
	Month           int        `json:"month"`
	MaxAttendees    int        `json:"max_attendees"`
	SeatsAvailable  int        `json:"seats_available"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ConferenceUpdate carries the updatable conference fields. Nil fields are
// left unchanged.
type ConferenceUpdate struct {
	Name        *string
	Description *string
	City        *string
	Topics      []string
	StartDate   *time.Time
	EndDate     *time.Time
}

// ConferenceRepository defines the interface for conference storage.
type ConferenceRepository interface {
	Create(ctx context.Context, conf *Conference) error
	GetByKey(ctx context.Context, key Key) (*Conference, error)
	Update(ctx context.Context, conf *Conference) error
	ListByOrganizer(ctx context.Context, userID string) ([]*Conference, error)
	// GetMulti returns one entry per requested key, preserving input order,
	// with nil for keys that do not resolve.
	GetMulti(ctx context.Context, keys []Key) ([]*Conference, error)
	// Query executes a validated filter plan and returns the matching
	// conferences in the plan's order.
	Query(ctx context.Context, plan *query.Plan) ([]*Conference, error)
	// ListNearlySoldOut returns conferences with 0 < seats <= maxSeats,
	// ordered by name.
	ListNearlySoldOut(ctx context.Context, maxSeats int) ([]*Conference, error)
}

// ConferenceService defines the business logic for conference management
// and querying.
type ConferenceService interface {
	CreateConference(ctx context.Context, identity Identity, conf *Conference) (*Conference, error)
	UpdateConference(ctx context.Context, userID string, key Key, upd *ConferenceUpdate) (*Conference, error)
	GetConference(ctx context.Context, key Key) (*Conference, error)
	ListConferencesCreated(ctx context.Context, userID string) ([]*Conference, error)
	QueryConferences(ctx context.Context, filters []query.Filter) ([]*Conference, error)
}
