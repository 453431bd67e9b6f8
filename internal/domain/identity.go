package domain

import "time"

// Identity is the resolved caller identity. Services receive it already
// verified; how it was established is the resolver's concern.
type Identity struct {
	UserID   string
	Email    string
	Nickname string
}

// IsZero reports whether no identity was resolved.
func (id Identity) IsZero() bool {
	return id.UserID == ""
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(identity Identity, expiry time.Duration) (string, error)
}

// IdentityResolver verifies a token and returns the caller identity.
type IdentityResolver interface {
	Resolve(token string) (Identity, error)
}
