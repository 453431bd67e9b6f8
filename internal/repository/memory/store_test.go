package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conferencecentral/internal/domain"
	"conferencecentral/internal/query"
)

func seedConference(t *testing.T, s *Store, organizer, id, name, city string, month, seats int, topics ...string) *domain.Conference {
	t.Helper()
	conf := &domain.Conference{
		Key:             domain.ProfileKey(organizer).Child(domain.KindConference, id),
		Name:            name,
		OrganizerUserID: organizer,
		City:            city,
		Topics:          topics,
		Month:           month,
		MaxAttendees:    seats,
		SeatsAvailable:  seats,
	}
	require.NoError(t, s.Create(context.Background(), conf))
	return conf
}

func TestStore_QueryFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedConference(t, s, "org", "a", "Zeta Conf", "London", 6, 100, "Medical Innovations")
	seedConference(t, s, "org", "b", "Alpha Conf", "London", 6, 50, "Medical Innovations")
	seedConference(t, s, "org", "c", "Beta Conf", "Paris", 7, 10, "Web Technologies")

	plan, err := query.BuildPlan([]query.Filter{
		{Field: "TOPIC", Operator: "EQ", Value: "Medical Innovations"},
		{Field: "MONTH", Operator: "EQ", Value: 6},
	})
	require.NoError(t, err)

	got, err := s.Query(ctx, plan)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Alpha Conf", got[0].Name)
	assert.Equal(t, "Zeta Conf", got[1].Name)
}

func TestStore_QueryInequalityOrdersByFieldThenName(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedConference(t, s, "org", "a", "B Conf", "London", 6, 100)
	seedConference(t, s, "org", "b", "A Conf", "London", 6, 100)
	seedConference(t, s, "org", "c", "C Conf", "London", 6, 20)

	plan, err := query.BuildPlan([]query.Filter{
		{Field: "MAX_ATTENDEES", Operator: "GT", Value: 10},
	})
	require.NoError(t, err)

	got, err := s.Query(ctx, plan)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "C Conf", got[0].Name)
	assert.Equal(t, "A Conf", got[1].Name)
	assert.Equal(t, "B Conf", got[2].Name)
}

func TestStore_GetMultiPreservesOrderAndAbsence(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	a := seedConference(t, s, "org", "a", "A", "London", 6, 10)
	b := seedConference(t, s, "org", "b", "B", "London", 6, 10)
	missing := domain.ProfileKey("org").Child(domain.KindConference, "missing")

	got, err := s.GetMulti(ctx, []domain.Key{b.Key, missing, a.Key})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "B", got[0].Name)
	assert.Nil(t, got[1])
	assert.Equal(t, "A", got[2].Name)
}

func TestStore_RegisterMutatesBothRecordsAtomically(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	conf := seedConference(t, s, "org", "a", "A", "London", 6, 2)

	require.NoError(t, s.Register(ctx, "user-1", conf.Key))

	prof, err := s.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, domain.ContainsKey(prof.ConferenceKeysToAttend, conf.Key))

	got, err := s.GetByKey(ctx, conf.Key)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SeatsAvailable)

	// Duplicate registration is rejected with no mutation.
	err = s.Register(ctx, "user-1", conf.Key)
	require.ErrorIs(t, err, domain.ErrConflict)
	got, err = s.GetByKey(ctx, conf.Key)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SeatsAvailable)
}

func TestStore_ListNearlySoldOut(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedConference(t, s, "org", "a", "Almost Full", "London", 6, 3)
	seedConference(t, s, "org", "b", "Plenty", "London", 6, 100)
	soldOut := seedConference(t, s, "org", "c", "Sold Out", "London", 6, 1)
	require.NoError(t, s.Register(ctx, "user-1", soldOut.Key))

	got, err := s.ListNearlySoldOut(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Almost Full", got[0].Name)
}
