package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"conferencecentral/internal/domain"
)

type sessionRepository struct {
	DB *sql.DB
}

// NewSessionRepository returns a Postgres-backed session repository.
func NewSessionRepository(db *sql.DB) domain.SessionRepository {
	return &sessionRepository{
		DB: db,
	}
}

const sessionColumns = `key, conference_key, name, highlights, type_of_session, duration_minutes, start_date_time, speaker_key, speaker_display_name, created_at, updated_at`

func (r *sessionRepository) Create(ctx context.Context, s *domain.Session) error {
	q := `
		INSERT INTO sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	var speakerKey *string
	if s.SpeakerKey != nil {
		enc := s.SpeakerKey.Encode()
		speakerKey = &enc
	}
	_, err := r.DB.ExecContext(ctx, q,
		s.Key.Encode(), s.ConferenceKey.Encode(), s.Name, s.Highlights,
		string(s.TypeOfSession), s.DurationMinutes, s.StartDateTime,
		speakerKey, s.SpeakerDisplayName, s.CreatedAt, s.UpdatedAt,
	)
	return err
}

func (r *sessionRepository) GetByKey(ctx context.Context, key domain.Key) (*domain.Session, error) {
	q := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE key = $1
	`
	s, err := scanSession(r.DB.QueryRowContext(ctx, q, key.Encode()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *sessionRepository) ListByConference(ctx context.Context, confKey domain.Key) ([]*domain.Session, error) {
	q := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE conference_key = $1
		ORDER BY name ASC
	`
	rows, err := r.DB.QueryContext(ctx, q, confKey.Encode())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (r *sessionRepository) ListByConferenceAndType(ctx context.Context, confKey domain.Key, t domain.SessionType) ([]*domain.Session, error) {
	q := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE conference_key = $1 AND type_of_session = $2
		ORDER BY name ASC
	`
	rows, err := r.DB.QueryContext(ctx, q, confKey.Encode(), string(t))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (r *sessionRepository) ListBySpeaker(ctx context.Context, speakerKey domain.Key) ([]*domain.Session, error) {
	q := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE speaker_key = $1
		ORDER BY name ASC
	`
	rows, err := r.DB.QueryContext(ctx, q, speakerKey.Encode())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (r *sessionRepository) GetMulti(ctx context.Context, keys []domain.Key) ([]*domain.Session, error) {
	encoded := encodeKeys(keys)
	q := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE key = ANY($1)
	`
	rows, err := r.DB.QueryContext(ctx, q, pq.Array(encoded))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	found, err := collectSessions(rows)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*domain.Session, len(found))
	for _, s := range found {
		byKey[s.Key.Encode()] = s
	}
	out := make([]*domain.Session, len(keys))
	for i, enc := range encoded {
		out[i] = byKey[enc]
	}
	return out, nil
}

func scanSession(row rowScanner) (*domain.Session, error) {
	s := &domain.Session{}
	var (
		encKey         string
		encConfKey     string
		sessionType    string
		startNull      sql.NullTime
		speakerKeyNull sql.NullString
	)
	err := row.Scan(
		&encKey, &encConfKey, &s.Name, &s.Highlights, &sessionType,
		&s.DurationMinutes, &startNull, &speakerKeyNull, &s.SpeakerDisplayName,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if s.Key, err = domain.DecodeKey(encKey); err != nil {
		return nil, fmt.Errorf("decode session key: %w", err)
	}
	if s.ConferenceKey, err = domain.DecodeKey(encConfKey); err != nil {
		return nil, fmt.Errorf("decode conference key: %w", err)
	}
	s.TypeOfSession = domain.SessionType(sessionType)
	if startNull.Valid {
		s.StartDateTime = &startNull.Time
	}
	if speakerKeyNull.Valid {
		speakerKey, err := domain.DecodeKey(speakerKeyNull.String)
		if err != nil {
			return nil, fmt.Errorf("decode speaker key: %w", err)
		}
		s.SpeakerKey = &speakerKey
	}
	return s, nil
}

func collectSessions(rows *sql.Rows) ([]*domain.Session, error) {
	out := make([]*domain.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
