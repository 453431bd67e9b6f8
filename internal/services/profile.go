package services

import (
	"context"
	"fmt"
	"time"

	"conferencecentral/internal/domain"
)

type profileService struct {
	profileRepo    domain.ProfileRepository
	contextTimeout time.Duration
}

// NewProfileService creates a ProfileService with the given repository.
func NewProfileService(profileRepo domain.ProfileRepository, timeout time.Duration) domain.ProfileService {
	return &profileService{
		profileRepo:    profileRepo,
		contextTimeout: timeout,
	}
}

func (s *profileService) GetProfile(ctx context.Context, identity domain.Identity) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if identity.IsZero() {
		return nil, domain.ErrUnauthorized
	}
	prof, err := s.profileRepo.GetOrCreate(ctx, domain.NewProfile(identity))
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return prof, nil
}

func (s *profileService) SaveProfile(ctx context.Context, identity domain.Identity, displayName, teeShirtSize string) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if identity.IsZero() {
		return nil, domain.ErrUnauthorized
	}
	prof, err := s.profileRepo.GetOrCreate(ctx, domain.NewProfile(identity))
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if displayName != "" {
		prof.DisplayName = displayName
	}
	if teeShirtSize != "" {
		prof.TeeShirtSize = teeShirtSize
	}
	prof.UpdatedAt = time.Now()

	if err := s.profileRepo.Update(ctx, prof); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return prof, nil
}
