package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"conferencecentral/internal/domain"
)

const (
	sessionDateLayout      = "2006-01-02"
	sessionTimeLayout      = "15:04"
	defaultSessionDuration = 60
)

type sessionService struct {
	sessionRepo    domain.SessionRepository
	conferenceRepo domain.ConferenceRepository
	speakerRepo    domain.SpeakerRepository
	cache          domain.Cache
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewSessionService creates a SessionService with the given collaborators.
func NewSessionService(
	sessionRepo domain.SessionRepository,
	conferenceRepo domain.ConferenceRepository,
	speakerRepo domain.SpeakerRepository,
	cache domain.Cache,
	logger *slog.Logger,
	timeout time.Duration,
) domain.SessionService {
	return &sessionService{
		sessionRepo:    sessionRepo,
		conferenceRepo: conferenceRepo,
		speakerRepo:    speakerRepo,
		cache:          cache,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *sessionService) CreateSession(ctx context.Context, userID string, confKey domain.Key, input *domain.SessionInput) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if input.Name == "" {
		return nil, fmt.Errorf("%w: session name is required", domain.ErrInvalidInput)
	}

	conf, err := s.conferenceRepo.GetByKey(ctx, confKey)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}
	if conf.OrganizerUserID != userID {
		return nil, domain.ErrForbidden
	}

	sessionType := domain.SessionTypeNotSpecified
	if input.TypeOfSession != "" {
		sessionType, err = domain.ParseSessionType(input.TypeOfSession)
		if err != nil {
			return nil, err
		}
	}

	duration := input.DurationMinutes
	if duration <= 0 {
		duration = defaultSessionDuration
	}

	startDateTime, err := parseSessionStart(input.Date, input.StartTime)
	if err != nil {
		return nil, err
	}

	session := &domain.Session{
		Key:             confKey.Child(domain.KindSession, uuid.New().String()),
		ConferenceKey:   confKey,
		Name:            input.Name,
		Highlights:      input.Highlights,
		TypeOfSession:   sessionType,
		DurationMinutes: duration,
		StartDateTime:   startDateTime,
	}

	if input.SpeakerKey != nil {
		speaker, err := s.speakerRepo.GetByKey(ctx, *input.SpeakerKey)
		if err != nil {
			if err == domain.ErrNotFound {
				return nil, fmt.Errorf("%w: unknown speaker", domain.ErrInvalidInput)
			}
			return nil, fmt.Errorf("get speaker: %w", err)
		}
		session.SpeakerKey = input.SpeakerKey
		session.SpeakerDisplayName = speaker.DisplayName
	}

	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if session.SpeakerKey != nil {
		s.refreshFeaturedSpeaker(ctx, conf.Key, session)
	}
	return session, nil
}

func (s *sessionService) ListConferenceSessions(ctx context.Context, confKey domain.Key) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.sessionRepo.ListByConference(ctx, confKey)
}

func (s *sessionService) ListConferenceSessionsByType(ctx context.Context, confKey domain.Key, sessionType string) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	t, err := domain.ParseSessionType(sessionType)
	if err != nil {
		return nil, err
	}
	return s.sessionRepo.ListByConferenceAndType(ctx, confKey, t)
}

func (s *sessionService) ListSessionsBySpeaker(ctx context.Context, speakerKey domain.Key) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.sessionRepo.ListBySpeaker(ctx, speakerKey)
}

func (s *sessionService) CreateSpeaker(ctx context.Context, displayName string) (*domain.Speaker, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if displayName == "" {
		return nil, fmt.Errorf("%w: speaker display name is required", domain.ErrInvalidInput)
	}

	now := time.Now()
	speaker := &domain.Speaker{
		Key:         domain.NewKey(domain.KindSpeaker, uuid.New().String()),
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.speakerRepo.Create(ctx, speaker); err != nil {
		return nil, fmt.Errorf("create speaker: %w", err)
	}
	return speaker, nil
}

func (s *sessionService) GetFeaturedSpeaker(ctx context.Context) (*domain.FeaturedSpeaker, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	value, ok, err := s.cache.Get(ctx, featuredSpeakerCacheKey)
	if err != nil {
		return nil, fmt.Errorf("get featured speaker: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var featured domain.FeaturedSpeaker
	if err := json.Unmarshal([]byte(value), &featured); err != nil {
		return nil, fmt.Errorf("decode featured speaker: %w", err)
	}
	return &featured, nil
}

// refreshFeaturedSpeaker promotes the session's speaker to featured when the
// speaker now has more than one session in this conference. Cache failures
// never surface to the caller.
func (s *sessionService) refreshFeaturedSpeaker(ctx context.Context, confKey domain.Key, created *domain.Session) {
	sessions, err := s.sessionRepo.ListByConference(ctx, confKey)
	if err != nil {
		s.logger.Warn("list sessions for featured speaker failed",
			slog.String("conference", confKey.Encode()),
			slog.String("error", err.Error()),
		)
		return
	}

	var names []string
	for _, session := range sessions {
		if session.SpeakerKey != nil && session.SpeakerKey.Encode() == created.SpeakerKey.Encode() {
			names = append(names, session.Name)
		}
	}
	if len(names) < 2 {
		return
	}

	payload, err := json.Marshal(domain.FeaturedSpeaker{
		Speaker:      created.SpeakerDisplayName,
		SessionNames: names,
	})
	if err != nil {
		s.logger.Warn("encode featured speaker failed", slog.String("error", err.Error()))
		return
	}
	if err := s.cache.Set(ctx, featuredSpeakerCacheKey, string(payload)); err != nil {
		s.logger.Warn("cache featured speaker failed", slog.String("error", err.Error()))
	}
}

func parseSessionStart(date, startTime string) (*time.Time, error) {
	if date == "" {
		return nil, nil
	}
	layout := sessionDateLayout
	value := date
	if startTime != "" {
		layout = sessionDateLayout + " " + sessionTimeLayout
		value = date + " " + startTime
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid session start %q", domain.ErrInvalidInput, value)
	}
	return &t, nil
}
