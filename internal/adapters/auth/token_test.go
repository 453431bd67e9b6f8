package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conferencecentral/internal/domain"
)

func TestJWTCodec_IssueAndResolve(t *testing.T) {
	codec := NewJWTCodec("test-secret")
	identity := domain.Identity{UserID: "user-123", Email: "u@example.com", Nickname: "gopher"}

	token, err := codec.Issue(identity, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	resolved, err := codec.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, identity, resolved)
}

func TestJWTCodec_Resolve_Rejections(t *testing.T) {
	codec := NewJWTCodec("test-secret")
	identity := domain.Identity{UserID: "user-123", Email: "u@example.com"}

	t.Run("garbage token", func(t *testing.T) {
		_, err := codec.Resolve("not-a-token")
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewJWTCodec("other-secret").Issue(identity, time.Hour)
		require.NoError(t, err)
		_, err = codec.Resolve(token)
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := codec.Issue(identity, -time.Minute)
		require.NoError(t, err)
		_, err = codec.Resolve(token)
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("missing subject", func(t *testing.T) {
		raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		token, err := raw.SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = codec.Resolve(token)
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}
