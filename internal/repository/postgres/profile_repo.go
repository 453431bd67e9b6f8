package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"conferencecentral/internal/domain"
)

type profileRepository struct {
	DB *sql.DB
}

// NewProfileRepository returns a Postgres-backed profile repository.
func NewProfileRepository(db *sql.DB) domain.ProfileRepository {
	return &profileRepository{
		DB: db,
	}
}

const profileColumns = `user_id, display_name, main_email, tee_shirt_size, conference_keys_to_attend, sessions_to_attend, created_at, updated_at`

func (r *profileRepository) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	q := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE user_id = $1
	`
	p, err := scanProfile(r.DB.QueryRowContext(ctx, q, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) GetOrCreate(ctx context.Context, defaults *domain.Profile) (*domain.Profile, error) {
	// Defaults are idempotent, so a concurrent first access is benign:
	// whichever insert wins, both callers read the same row back.
	q := `
		INSERT INTO profiles (user_id, display_name, main_email, tee_shirt_size)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO NOTHING
	`
	teeShirtSize := defaults.TeeShirtSize
	if teeShirtSize == "" {
		teeShirtSize = domain.TeeShirtSizeNotSpecified
	}
	if _, err := r.DB.ExecContext(ctx, q, defaults.UserID, defaults.DisplayName, defaults.MainEmail, teeShirtSize); err != nil {
		return nil, err
	}
	return r.Get(ctx, defaults.UserID)
}

func (r *profileRepository) Update(ctx context.Context, p *domain.Profile) error {
	q := `
		UPDATE profiles
		SET display_name = $2, main_email = $3, tee_shirt_size = $4,
		    conference_keys_to_attend = $5, sessions_to_attend = $6,
		    updated_at = now()
		WHERE user_id = $1
	`
	res, err := r.DB.ExecContext(ctx, q,
		p.UserID, p.DisplayName, p.MainEmail, p.TeeShirtSize,
		pq.Array(encodeKeys(p.ConferenceKeysToAttend)),
		pq.Array(encodeKeys(p.SessionsToAttend)),
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	p := &domain.Profile{}
	var confKeys, sessKeys []string
	err := row.Scan(
		&p.UserID, &p.DisplayName, &p.MainEmail, &p.TeeShirtSize,
		pq.Array(&confKeys), pq.Array(&sessKeys), &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.ConferenceKeysToAttend, err = decodeKeys(confKeys); err != nil {
		return nil, fmt.Errorf("decode conference keys: %w", err)
	}
	if p.SessionsToAttend, err = decodeKeys(sessKeys); err != nil {
		return nil, fmt.Errorf("decode session keys: %w", err)
	}
	return p, nil
}

func encodeKeys(keys []domain.Key) []string {
	out := make([]string, len(keys))
	for i, key := range keys {
		out[i] = key.Encode()
	}
	return out
}

func decodeKeys(encoded []string) ([]domain.Key, error) {
	out := make([]domain.Key, len(encoded))
	for i, enc := range encoded {
		key, err := domain.DecodeKey(enc)
		if err != nil {
			return nil, err
		}
		out[i] = key
	}
	return out, nil
}
