package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conferencecentral/internal/domain"
)

func profileRow(userID string, confKeys string) *sqlmock.Rows {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"user_id", "display_name", "main_email", "tee_shirt_size",
		"conference_keys_to_attend", "sessions_to_attend", "created_at", "updated_at",
	}).AddRow(userID, "Ada", "ada@example.com", "NOT_SPECIFIED", confKeys, "{}", now, now)
}

func TestProfileRepository_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(`FROM profiles`)).
			WithArgs("user-1").
			WillReturnRows(profileRow("user-1", "{"+testConfKey.Encode()+"}"))

		repo := NewProfileRepository(db)
		got, err := repo.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "Ada", got.DisplayName)
		require.Len(t, got.ConferenceKeysToAttend, 1)
		assert.Equal(t, testConfKey.String(), got.ConferenceKeysToAttend[0].String())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(`FROM profiles`)).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

		repo := NewProfileRepository(db)
		_, err = repo.Get(ctx, "user-1")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestProfileRepository_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO profiles`)).
		WithArgs("user-1", "Ada", "ada@example.com", "NOT_SPECIFIED").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM profiles`)).
		WithArgs("user-1").
		WillReturnRows(profileRow("user-1", "{}"))

	repo := NewProfileRepository(db)
	got, err := repo.GetOrCreate(ctx, &domain.Profile{
		UserID:      "user-1",
		DisplayName: "Ada",
		MainEmail:   "ada@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Empty(t, got.ConferenceKeysToAttend)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_Update(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE profiles`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewProfileRepository(db)
	err = repo.Update(ctx, &domain.Profile{
		UserID:           "user-1",
		DisplayName:      "Ada",
		TeeShirtSize:     "L",
		SessionsToAttend: []domain.Key{testConfKey.Child(domain.KindSession, "sess-1")},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
