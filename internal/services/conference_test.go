package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conferencecentral/internal/adapters/cache"
	"conferencecentral/internal/domain"
	"conferencecentral/internal/query"
	"conferencecentral/internal/repository/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeQueue records enqueued tasks.
type fakeQueue struct {
	tasks []domain.Task
	err   error
}

func (f *fakeQueue) Enqueue(_ context.Context, task domain.Task) error {
	if f.err != nil {
		return f.err
	}
	f.tasks = append(f.tasks, task)
	return nil
}

type conferenceFixture struct {
	store *memory.Store
	cache *cache.Memory
	queue *fakeQueue
	svc   domain.ConferenceService
}

func newConferenceFixture() *conferenceFixture {
	store := memory.NewStore()
	c := cache.NewMemory()
	q := &fakeQueue{}
	ann := NewAnnouncementService(store, c, 5*time.Second)
	svc := NewConferenceService(store, store.Profiles(), q, ann, testLogger(), 5*time.Second)
	return &conferenceFixture{store: store, cache: c, queue: q, svc: svc}
}

func TestConferenceService_CreateConference(t *testing.T) {
	ctx := context.Background()
	identity := domain.Identity{UserID: "user-1", Email: "u1@example.com", Nickname: "u1"}
	start := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

	t.Run("success with defaults", func(t *testing.T) {
		fx := newConferenceFixture()
		conf, err := fx.svc.CreateConference(ctx, identity, &domain.Conference{
			Name:         "GopherCon",
			MaxAttendees: 100,
		})
		require.NoError(t, err)

		assert.Equal(t, domain.DefaultCity, conf.City)
		assert.Equal(t, domain.DefaultTopics, conf.Topics)
		assert.Equal(t, 0, conf.Month)
		assert.Equal(t, 100, conf.SeatsAvailable)
		assert.Equal(t, "user-1", conf.OrganizerUserID)
		require.NotNil(t, conf.Key.Parent)
		assert.Equal(t, domain.KindConference, conf.Key.Kind)
		assert.Equal(t, domain.ProfileKey("user-1"), *conf.Key.Parent)

		stored, err := fx.store.GetByKey(ctx, conf.Key)
		require.NoError(t, err)
		assert.Equal(t, "GopherCon", stored.Name)

		// The organizer profile was created lazily with the identity email.
		prof, err := fx.store.Profiles().Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "u1@example.com", prof.MainEmail)

		require.Len(t, fx.queue.tasks, 1)
		assert.Equal(t, domain.TaskSendConfirmationEmail, fx.queue.tasks[0].Name)
		assert.Equal(t, "GopherCon", fx.queue.tasks[0].Payload["conferenceName"])
		assert.Equal(t, "u1@example.com", fx.queue.tasks[0].Payload["email"])
	})

	t.Run("month derived from start date", func(t *testing.T) {
		fx := newConferenceFixture()
		conf, err := fx.svc.CreateConference(ctx, identity, &domain.Conference{
			Name:         "GopherCon",
			StartDate:    &start,
			MaxAttendees: 10,
		})
		require.NoError(t, err)
		assert.Equal(t, 6, conf.Month)
	})

	t.Run("anonymous caller rejected", func(t *testing.T) {
		fx := newConferenceFixture()
		_, err := fx.svc.CreateConference(ctx, domain.Identity{}, &domain.Conference{Name: "GopherCon"})
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("missing name rejected", func(t *testing.T) {
		fx := newConferenceFixture()
		_, err := fx.svc.CreateConference(ctx, identity, &domain.Conference{})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("negative max attendees rejected", func(t *testing.T) {
		fx := newConferenceFixture()
		_, err := fx.svc.CreateConference(ctx, identity, &domain.Conference{Name: "GopherCon", MaxAttendees: -1})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("enqueue failure does not fail creation", func(t *testing.T) {
		fx := newConferenceFixture()
		fx.queue.err = errors.New("queue down")
		conf, err := fx.svc.CreateConference(ctx, identity, &domain.Conference{Name: "GopherCon", MaxAttendees: 10})
		require.NoError(t, err)
		_, err = fx.store.GetByKey(ctx, conf.Key)
		require.NoError(t, err)
	})

	t.Run("small conference triggers announcement", func(t *testing.T) {
		fx := newConferenceFixture()
		_, err := fx.svc.CreateConference(ctx, identity, &domain.Conference{Name: "Tiny Meetup", MaxAttendees: 3})
		require.NoError(t, err)

		value, ok, err := fx.cache.Get(ctx, announcementsCacheKey)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Contains(t, value, "Tiny Meetup")
		assert.Contains(t, value, "Last chance to attend!")
	})
}

func TestConferenceService_UpdateConference(t *testing.T) {
	ctx := context.Background()
	identity := domain.Identity{UserID: "user-1", Email: "u1@example.com"}

	fx := newConferenceFixture()
	conf, err := fx.svc.CreateConference(ctx, identity, &domain.Conference{
		Name:         "GopherCon",
		City:         "Denver",
		MaxAttendees: 100,
	})
	require.NoError(t, err)

	t.Run("owner updates fields", func(t *testing.T) {
		newName := "GopherCon EU"
		newStart := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
		updated, err := fx.svc.UpdateConference(ctx, "user-1", conf.Key, &domain.ConferenceUpdate{
			Name:      &newName,
			StartDate: &newStart,
		})
		require.NoError(t, err)
		assert.Equal(t, "GopherCon EU", updated.Name)
		assert.Equal(t, 9, updated.Month)
		assert.Equal(t, "Denver", updated.City)
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		city := "Berlin"
		_, err := fx.svc.UpdateConference(ctx, "user-2", conf.Key, &domain.ConferenceUpdate{City: &city})
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("unknown conference", func(t *testing.T) {
		missing := domain.ProfileKey("user-1").Child(domain.KindConference, "missing")
		_, err := fx.svc.UpdateConference(ctx, "user-1", missing, &domain.ConferenceUpdate{})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		empty := ""
		_, err := fx.svc.UpdateConference(ctx, "user-1", conf.Key, &domain.ConferenceUpdate{Name: &empty})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestConferenceService_QueryConferences(t *testing.T) {
	ctx := context.Background()
	fx := newConferenceFixture()
	identity := domain.Identity{UserID: "user-1", Email: "u1@example.com"}

	june := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	july := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	seed := []*domain.Conference{
		{Name: "Zeta Med", City: "London", Topics: []string{"Medical Innovations"}, StartDate: &june, MaxAttendees: 50},
		{Name: "Alpha Med", City: "Paris", Topics: []string{"Medical Innovations"}, StartDate: &june, MaxAttendees: 30},
		{Name: "Web Summit", City: "London", Topics: []string{"Web Technologies"}, StartDate: &july, MaxAttendees: 500},
	}
	for _, conf := range seed {
		_, err := fx.svc.CreateConference(ctx, identity, conf)
		require.NoError(t, err)
	}

	t.Run("topic and month, ordered by name", func(t *testing.T) {
		got, err := fx.svc.QueryConferences(ctx, []query.Filter{
			{Field: "TOPIC", Operator: "EQ", Value: "Medical Innovations"},
			{Field: "MONTH", Operator: "EQ", Value: 6},
		})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Alpha Med", got[0].Name)
		assert.Equal(t, "Zeta Med", got[1].Name)
	})

	t.Run("inequality ordered first", func(t *testing.T) {
		got, err := fx.svc.QueryConferences(ctx, []query.Filter{
			{Field: "CITY", Operator: "EQ", Value: "London"},
			{Field: "MAX_ATTENDEES", Operator: "GT", Value: 10},
		})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Zeta Med", got[0].Name)
		assert.Equal(t, "Web Summit", got[1].Name)
	})

	t.Run("conflicting inequality fields rejected", func(t *testing.T) {
		_, err := fx.svc.QueryConferences(ctx, []query.Filter{
			{Field: "MONTH", Operator: "GT", Value: 3},
			{Field: "MAX_ATTENDEES", Operator: "LT", Value: 100},
		})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		_, err := fx.svc.QueryConferences(ctx, []query.Filter{
			{Field: "VENUE", Operator: "EQ", Value: "Hall A"},
		})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("no filters returns everything", func(t *testing.T) {
		got, err := fx.svc.QueryConferences(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})
}
