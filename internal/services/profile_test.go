package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conferencecentral/internal/domain"
	"conferencecentral/internal/repository/memory"
)

func TestProfileService_GetProfile(t *testing.T) {
	ctx := context.Background()
	identity := domain.Identity{UserID: "user-1", Email: "u1@example.com", Nickname: "gopher"}

	t.Run("first access creates from defaults", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewProfileService(store.Profiles(), 5*time.Second)

		prof, err := svc.GetProfile(ctx, identity)
		require.NoError(t, err)
		assert.Equal(t, "user-1", prof.UserID)
		assert.Equal(t, "gopher", prof.DisplayName)
		assert.Equal(t, "u1@example.com", prof.MainEmail)
		assert.Equal(t, domain.TeeShirtSizeNotSpecified, prof.TeeShirtSize)
	})

	t.Run("second access returns the stored profile", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewProfileService(store.Profiles(), 5*time.Second)

		_, err := svc.SaveProfile(ctx, identity, "Gopher McGopherface", "XL")
		require.NoError(t, err)

		prof, err := svc.GetProfile(ctx, identity)
		require.NoError(t, err)
		assert.Equal(t, "Gopher McGopherface", prof.DisplayName)
		assert.Equal(t, "XL", prof.TeeShirtSize)
	})

	t.Run("anonymous caller rejected", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewProfileService(store.Profiles(), 5*time.Second)
		_, err := svc.GetProfile(ctx, domain.Identity{})
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestProfileService_SaveProfile(t *testing.T) {
	ctx := context.Background()
	identity := domain.Identity{UserID: "user-1", Email: "u1@example.com", Nickname: "gopher"}

	t.Run("empty fields keep stored values", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewProfileService(store.Profiles(), 5*time.Second)

		_, err := svc.SaveProfile(ctx, identity, "Gopher", "M")
		require.NoError(t, err)

		prof, err := svc.SaveProfile(ctx, identity, "", "")
		require.NoError(t, err)
		assert.Equal(t, "Gopher", prof.DisplayName)
		assert.Equal(t, "M", prof.TeeShirtSize)
	})

	t.Run("save on first access creates then updates", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewProfileService(store.Profiles(), 5*time.Second)

		prof, err := svc.SaveProfile(ctx, identity, "Gopher", "")
		require.NoError(t, err)
		assert.Equal(t, "Gopher", prof.DisplayName)
		assert.Equal(t, domain.TeeShirtSizeNotSpecified, prof.TeeShirtSize)

		stored, err := store.Profiles().Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "Gopher", stored.DisplayName)
	})
}
