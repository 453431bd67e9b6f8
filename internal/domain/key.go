package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Entity kinds used in keys.
const (
	KindProfile    = "Profile"
	KindConference = "Conference"
	KindSession    = "Session"
	KindSpeaker    = "Speaker"
)

// Key identifies an entity in the hierarchical keyspace. Parent is nil for
// root entities (Profile, Speaker). Conferences are children of the
// organizer's profile key; sessions are children of their conference key.
type Key struct {
	Kind   string `json:"kind"`
	ID     string `json:"id"`
	Parent *Key   `json:"parent,omitempty"`
}

// NewKey returns a root key for the given kind and id.
func NewKey(kind, id string) Key {
	return Key{Kind: kind, ID: id}
}

// ProfileKey returns the root key for a user's profile.
func ProfileKey(userID string) Key {
	return NewKey(KindProfile, userID)
}

// Child returns a key of the given kind and id parented by k.
func (k Key) Child(kind, id string) Key {
	parent := k
	return Key{Kind: kind, ID: id, Parent: &parent}
}

// IsZero reports whether k is the zero key.
func (k Key) IsZero() bool {
	return k.Kind == "" && k.ID == "" && k.Parent == nil
}

// String returns the slash-separated key path, root first,
// e.g. "Profile/u1/Conference/c1".
func (k Key) String() string {
	if k.Parent != nil {
		return k.Parent.String() + "/" + k.Kind + "/" + k.ID
	}
	return k.Kind + "/" + k.ID
}

// Encode returns the websafe form of the key path.
func (k Key) Encode() string {
	return base64.RawURLEncoding.EncodeToString([]byte(k.String()))
}

// DecodeKey parses a websafe key produced by Encode. Malformed input is
// reported as ErrInvalidInput.
func DecodeKey(s string) (Key, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Key{}, fmt.Errorf("%w: malformed key %q", ErrInvalidInput, s)
	}
	parts := strings.Split(string(raw), "/")
	if len(parts) < 2 || len(parts)%2 != 0 {
		return Key{}, fmt.Errorf("%w: malformed key path %q", ErrInvalidInput, string(raw))
	}
	var key Key
	for i := 0; i < len(parts); i += 2 {
		kind, id := parts[i], parts[i+1]
		if kind == "" || id == "" {
			return Key{}, fmt.Errorf("%w: malformed key path %q", ErrInvalidInput, string(raw))
		}
		if i == 0 {
			key = NewKey(kind, id)
		} else {
			key = key.Child(kind, id)
		}
	}
	return key, nil
}

// ContainsKey reports whether keys contains k.
func ContainsKey(keys []Key, k Key) bool {
	enc := k.Encode()
	for _, have := range keys {
		if have.Encode() == enc {
			return true
		}
	}
	return false
}

// RemoveKey returns keys with every occurrence of k removed.
func RemoveKey(keys []Key, k Key) []Key {
	enc := k.Encode()
	out := keys[:0:0]
	for _, have := range keys {
		if have.Encode() != enc {
			out = append(out, have)
		}
	}
	return out
}
