package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"conferencecentral/internal/domain"
)

type speakerRepository struct {
	DB *sql.DB
}

// NewSpeakerRepository returns a Postgres-backed speaker repository.
func NewSpeakerRepository(db *sql.DB) domain.SpeakerRepository {
	return &speakerRepository{
		DB: db,
	}
}

func (r *speakerRepository) Create(ctx context.Context, s *domain.Speaker) error {
	q := `
		INSERT INTO speakers (key, display_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.DB.ExecContext(ctx, q, s.Key.Encode(), s.DisplayName, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *speakerRepository) GetByKey(ctx context.Context, key domain.Key) (*domain.Speaker, error) {
	q := `
		SELECT key, display_name, created_at, updated_at
		FROM speakers
		WHERE key = $1
	`
	s := &domain.Speaker{}
	var encKey string
	err := r.DB.QueryRowContext(ctx, q, key.Encode()).
		Scan(&encKey, &s.DisplayName, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if s.Key, err = domain.DecodeKey(encKey); err != nil {
		return nil, fmt.Errorf("decode speaker key: %w", err)
	}
	return s, nil
}
