package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"conferencecentral/internal/domain"
)

type attendeeService struct {
	registrar      domain.Registrar
	conferenceRepo domain.ConferenceRepository
	sessionRepo    domain.SessionRepository
	profileRepo    domain.ProfileRepository
	announcements  domain.AnnouncementService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewAttendeeService creates an AttendeeService with the given collaborators.
func NewAttendeeService(
	registrar domain.Registrar,
	conferenceRepo domain.ConferenceRepository,
	sessionRepo domain.SessionRepository,
	profileRepo domain.ProfileRepository,
	announcements domain.AnnouncementService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AttendeeService {
	return &attendeeService{
		registrar:      registrar,
		conferenceRepo: conferenceRepo,
		sessionRepo:    sessionRepo,
		profileRepo:    profileRepo,
		announcements:  announcements,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *attendeeService) RegisterForConference(ctx context.Context, userID string, confKey domain.Key) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.registrar.Register(ctx, userID, confKey); err != nil {
		return err
	}
	s.recomputeAnnouncement(ctx, confKey)
	return nil
}

func (s *attendeeService) UnregisterFromConference(ctx context.Context, userID string, confKey domain.Key) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	removed, err := s.registrar.Unregister(ctx, userID, confKey)
	if err != nil {
		return false, err
	}
	if removed {
		s.recomputeAnnouncement(ctx, confKey)
	}
	return removed, nil
}

func (s *attendeeService) ListConferencesToAttend(ctx context.Context, userID string) ([]*domain.Conference, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	prof, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		if err == domain.ErrNotFound {
			return []*domain.Conference{}, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if len(prof.ConferenceKeysToAttend) == 0 {
		return []*domain.Conference{}, nil
	}

	confs, err := s.conferenceRepo.GetMulti(ctx, prof.ConferenceKeysToAttend)
	if err != nil {
		return nil, fmt.Errorf("get conferences: %w", err)
	}
	// A registration may outlive its conference record; skip the holes.
	out := make([]*domain.Conference, 0, len(confs))
	for _, conf := range confs {
		if conf != nil {
			out = append(out, conf)
		}
	}
	return out, nil
}

func (s *attendeeService) AddSessionToWishlist(ctx context.Context, identity domain.Identity, sessionKey domain.Key) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if identity.IsZero() {
		return nil, domain.ErrUnauthorized
	}

	session, err := s.sessionRepo.GetByKey(ctx, sessionKey)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	prof, err := s.profileRepo.GetOrCreate(ctx, domain.NewProfile(identity))
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if domain.ContainsKey(prof.SessionsToAttend, sessionKey) {
		return nil, fmt.Errorf("%w: session already saved to wishlist", domain.ErrInvalidInput)
	}

	prof.SessionsToAttend = append(prof.SessionsToAttend, sessionKey)
	if err := s.profileRepo.Update(ctx, prof); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return session, nil
}

func (s *attendeeService) ListSessionWishlist(ctx context.Context, identity domain.Identity) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if identity.IsZero() {
		return nil, domain.ErrUnauthorized
	}

	prof, err := s.profileRepo.GetOrCreate(ctx, domain.NewProfile(identity))
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if len(prof.SessionsToAttend) == 0 {
		return []*domain.Session{}, nil
	}

	sessions, err := s.sessionRepo.GetMulti(ctx, prof.SessionsToAttend)
	if err != nil {
		return nil, fmt.Errorf("get sessions: %w", err)
	}
	out := make([]*domain.Session, 0, len(sessions))
	for _, session := range sessions {
		if session != nil {
			out = append(out, session)
		}
	}
	return out, nil
}

func (s *attendeeService) recomputeAnnouncement(ctx context.Context, confKey domain.Key) {
	if _, err := s.announcements.RecomputeAnnouncement(ctx); err != nil {
		s.logger.Warn("recompute announcement failed",
			slog.String("conference", confKey.Encode()),
			slog.String("error", err.Error()),
		)
	}
}
