package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/lib/pq"

	"conferencecentral/internal/domain"
)

// maxTxAttempts bounds retries of the registration transaction on
// serialization and deadlock failures before surfacing ErrAborted.
const maxTxAttempts = 3

type registrarRepository struct {
	DB *sql.DB
}

// NewRegistrarRepository returns the Postgres-backed registrar. Register and
// Unregister each run as one transaction that row-locks both the profile and
// the conference, so the membership check, the seat check and both mutations
// are linearized against any other registration touching either record.
func NewRegistrarRepository(db *sql.DB) domain.Registrar {
	return &registrarRepository{
		DB: db,
	}
}

func (r *registrarRepository) Register(ctx context.Context, userID string, confKey domain.Key) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = r.register(ctx, userID, confKey)
		if !retryable(err) {
			return err
		}
	}
	return fmt.Errorf("%w: register: %v", domain.ErrAborted, err)
}

func (r *registrarRepository) register(ctx context.Context, userID string, confKey domain.Key) error {
	if err := r.ensureProfile(ctx, userID); err != nil {
		return fmt.Errorf("ensure profile: %w", err)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	keys, err := lockProfileKeys(ctx, tx, userID)
	if err != nil {
		return err
	}
	seats, err := lockConferenceSeats(ctx, tx, confKey)
	if err != nil {
		return err
	}

	if slices.Contains(keys, confKey.Encode()) {
		return domain.ErrAlreadyRegistered
	}
	if seats <= 0 {
		return domain.ErrNoSeatsAvailable
	}

	q := `
		UPDATE profiles
		SET conference_keys_to_attend = array_append(conference_keys_to_attend, $2), updated_at = now()
		WHERE user_id = $1
	`
	if _, err := tx.ExecContext(ctx, q, userID, confKey.Encode()); err != nil {
		return fmt.Errorf("append registration: %w", err)
	}
	q = `
		UPDATE conferences
		SET seats_available = seats_available - 1, updated_at = now()
		WHERE key = $1
	`
	if _, err := tx.ExecContext(ctx, q, confKey.Encode()); err != nil {
		return fmt.Errorf("take seat: %w", err)
	}
	return tx.Commit()
}

func (r *registrarRepository) Unregister(ctx context.Context, userID string, confKey domain.Key) (bool, error) {
	var (
		removed bool
		err     error
	)
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		removed, err = r.unregister(ctx, userID, confKey)
		if !retryable(err) {
			return removed, err
		}
	}
	return false, fmt.Errorf("%w: unregister: %v", domain.ErrAborted, err)
}

func (r *registrarRepository) unregister(ctx context.Context, userID string, confKey domain.Key) (bool, error) {
	if err := r.ensureProfile(ctx, userID); err != nil {
		return false, fmt.Errorf("ensure profile: %w", err)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	keys, err := lockProfileKeys(ctx, tx, userID)
	if err != nil {
		return false, err
	}
	if _, err := lockConferenceSeats(ctx, tx, confKey); err != nil {
		return false, err
	}

	// Not being registered is a no-op, not an error.
	if !slices.Contains(keys, confKey.Encode()) {
		return false, nil
	}

	q := `
		UPDATE profiles
		SET conference_keys_to_attend = array_remove(conference_keys_to_attend, $2), updated_at = now()
		WHERE user_id = $1
	`
	if _, err := tx.ExecContext(ctx, q, userID, confKey.Encode()); err != nil {
		return false, fmt.Errorf("remove registration: %w", err)
	}
	q = `
		UPDATE conferences
		SET seats_available = seats_available + 1, updated_at = now()
		WHERE key = $1
	`
	if _, err := tx.ExecContext(ctx, q, confKey.Encode()); err != nil {
		return false, fmt.Errorf("return seat: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *registrarRepository) ensureProfile(ctx context.Context, userID string) error {
	q := `
		INSERT INTO profiles (user_id, tee_shirt_size)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, q, userID, domain.TeeShirtSizeNotSpecified)
	return err
}

func lockProfileKeys(ctx context.Context, tx *sql.Tx, userID string) ([]string, error) {
	var keys []string
	q := `SELECT conference_keys_to_attend FROM profiles WHERE user_id = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, q, userID).Scan(pq.Array(&keys)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lock profile: %w", err)
	}
	return keys, nil
}

func lockConferenceSeats(ctx context.Context, tx *sql.Tx, confKey domain.Key) (int, error) {
	var seats int
	q := `SELECT seats_available FROM conferences WHERE key = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, q, confKey.Encode()).Scan(&seats); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("lock conference: %w", err)
	}
	return seats, nil
}

// retryable reports whether err is a Postgres serialization or deadlock
// failure worth another transaction attempt.
func retryable(err error) bool {
	var pgErr *pq.Error
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
