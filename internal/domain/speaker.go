package domain

import (
	"context"
	"time"
)

// Speaker represents a speaker. Speakers are independent roots: sessions
// reference them by key but never own them.
type Speaker struct {
	Key         Key       `json:"key"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SpeakerRepository defines the interface for speaker storage.
type SpeakerRepository interface {
	Create(ctx context.Context, speaker *Speaker) error
	GetByKey(ctx context.Context, key Key) (*Speaker, error)
}
