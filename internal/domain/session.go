package domain

import (
	"context"
	"fmt"
	"time"
)

// SessionType is the closed set of session kinds.
type SessionType string

const (
	SessionTypeNotSpecified SessionType = "NOT_SPECIFIED"
	SessionTypeLecture      SessionType = "LECTURE"
	SessionTypeKeynote      SessionType = "KEYNOTE"
	SessionTypeWorkshop     SessionType = "WORKSHOP"
)

// ParseSessionType resolves a symbolic session type name. Unknown names are
// reported as ErrInvalidInput.
func ParseSessionType(s string) (SessionType, error) {
	switch SessionType(s) {
	case SessionTypeNotSpecified, SessionTypeLecture, SessionTypeKeynote, SessionTypeWorkshop:
		return SessionType(s), nil
	}
	return "", fmt.Errorf("%w: unknown session type %q", ErrInvalidInput, s)
}

// Session represents a conference session or talk, keyed as a child of its
// conference. SpeakerDisplayName is copied from the Speaker at creation time
// on purpose, so reads never join against the speaker record; the copy is
// never updated retroactively.
type Session struct {
	Key                Key         `json:"key"`
	ConferenceKey      Key         `json:"conference_key"`
	Name               string      `json:"name"`
	Highlights         string      `json:"highlights"`
	TypeOfSession      SessionType `json:"type_of_session"`
	DurationMinutes    int         `json:"duration_minutes"`
	StartDateTime      *time.Time  `json:"start_date_time"`
	SpeakerKey         *Key        `json:"speaker_key"`
	SpeakerDisplayName string      `json:"speaker_display_name"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// SessionInput carries the caller-supplied fields for session creation.
// Date is "YYYY-MM-DD" and StartTime is "HH:MM"; when both are present they
// are combined into the session's StartDateTime.
type SessionInput struct {
	Name            string
	Highlights      string
	TypeOfSession   string
	DurationMinutes int
	Date            string
	StartTime       string
	SpeakerKey      *Key
}

// SessionRepository defines the interface for session storage.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	GetByKey(ctx context.Context, key Key) (*Session, error)
	ListByConference(ctx context.Context, confKey Key) ([]*Session, error)
	ListByConferenceAndType(ctx context.Context, confKey Key, t SessionType) ([]*Session, error)
	ListBySpeaker(ctx context.Context, speakerKey Key) ([]*Session, error)
	// GetMulti returns one entry per requested key, preserving input order,
	// with nil for keys that do not resolve.
	GetMulti(ctx context.Context, keys []Key) ([]*Session, error)
}

// FeaturedSpeaker is the cached featured-speaker entry: the speaker's
// display name plus the names of their sessions in one conference.
type FeaturedSpeaker struct {
	Speaker      string   `json:"speaker"`
	SessionNames []string `json:"session_names"`
}

// SessionService defines the business logic for sessions and speakers.
type SessionService interface {
	CreateSession(ctx context.Context, userID string, confKey Key, input *SessionInput) (*Session, error)
	ListConferenceSessions(ctx context.Context, confKey Key) ([]*Session, error)
	ListConferenceSessionsByType(ctx context.Context, confKey Key, sessionType string) ([]*Session, error)
	ListSessionsBySpeaker(ctx context.Context, speakerKey Key) ([]*Session, error)
	CreateSpeaker(ctx context.Context, displayName string) (*Speaker, error)
	GetFeaturedSpeaker(ctx context.Context) (*FeaturedSpeaker, error)
}
