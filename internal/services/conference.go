package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"conferencecentral/internal/domain"
	"conferencecentral/internal/query"
)

type conferenceService struct {
	conferenceRepo domain.ConferenceRepository
	profileRepo    domain.ProfileRepository
	queue          domain.TaskQueue
	announcements  domain.AnnouncementService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewConferenceService creates a ConferenceService with the given
// collaborators.
func NewConferenceService(
	conferenceRepo domain.ConferenceRepository,
	profileRepo domain.ProfileRepository,
	queue domain.TaskQueue,
	announcements domain.AnnouncementService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ConferenceService {
	return &conferenceService{
		conferenceRepo: conferenceRepo,
		profileRepo:    profileRepo,
		queue:          queue,
		announcements:  announcements,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *conferenceService) CreateConference(ctx context.Context, identity domain.Identity, conf *domain.Conference) (*domain.Conference, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if identity.IsZero() {
		return nil, domain.ErrUnauthorized
	}
	if conf.Name == "" {
		return nil, fmt.Errorf("%w: conference name is required", domain.ErrInvalidInput)
	}
	if conf.MaxAttendees < 0 {
		return nil, fmt.Errorf("%w: max attendees must not be negative", domain.ErrInvalidInput)
	}

	if conf.City == "" {
		conf.City = domain.DefaultCity
	}
	if len(conf.Topics) == 0 {
		conf.Topics = append([]string(nil), domain.DefaultTopics...)
	}
	conf.Month = monthOf(conf.StartDate)
	conf.SeatsAvailable = conf.MaxAttendees
	conf.OrganizerUserID = identity.UserID
	conf.Key = domain.ProfileKey(identity.UserID).Child(domain.KindConference, uuid.New().String())

	now := time.Now()
	conf.CreatedAt = now
	conf.UpdatedAt = now

	// Conferences are parented by the organizer's profile; make sure it
	// exists before the child record does.
	prof, err := s.profileRepo.GetOrCreate(ctx, domain.NewProfile(identity))
	if err != nil {
		return nil, fmt.Errorf("get organizer profile: %w", err)
	}

	if err := s.conferenceRepo.Create(ctx, conf); err != nil {
		return nil, fmt.Errorf("create conference: %w", err)
	}

	// Confirmation notice is fire-and-forget: an enqueue failure never
	// rolls back the creation.
	task := domain.Task{
		Name: domain.TaskSendConfirmationEmail,
		Payload: map[string]string{
			"email":          prof.MainEmail,
			"conferenceName": conf.Name,
		},
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		s.logger.Warn("enqueue confirmation email failed",
			slog.String("conference", conf.Key.Encode()),
			slog.String("error", err.Error()),
		)
	}

	s.recomputeAnnouncement(ctx, conf)
	return conf, nil
}

func (s *conferenceService) UpdateConference(ctx context.Context, userID string, key domain.Key, upd *domain.ConferenceUpdate) (*domain.Conference, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	conf, err := s.conferenceRepo.GetByKey(ctx, key)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}
	if conf.OrganizerUserID != userID {
		return nil, domain.ErrForbidden
	}

	if upd.Name != nil {
		if *upd.Name == "" {
			return nil, fmt.Errorf("%w: conference name is required", domain.ErrInvalidInput)
		}
		conf.Name = *upd.Name
	}
	if upd.Description != nil {
		conf.Description = *upd.Description
	}
	if upd.City != nil {
		conf.City = *upd.City
	}
	if len(upd.Topics) > 0 {
		conf.Topics = append([]string(nil), upd.Topics...)
	}
	if upd.StartDate != nil {
		conf.StartDate = upd.StartDate
		conf.Month = monthOf(upd.StartDate)
	}
	if upd.EndDate != nil {
		conf.EndDate = upd.EndDate
	}
	conf.UpdatedAt = time.Now()

	if err := s.conferenceRepo.Update(ctx, conf); err != nil {
		return nil, fmt.Errorf("update conference: %w", err)
	}

	s.recomputeAnnouncement(ctx, conf)
	return conf, nil
}

func (s *conferenceService) GetConference(ctx context.Context, key domain.Key) (*domain.Conference, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.conferenceRepo.GetByKey(ctx, key)
}

func (s *conferenceService) ListConferencesCreated(ctx context.Context, userID string) ([]*domain.Conference, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.conferenceRepo.ListByOrganizer(ctx, userID)
}

func (s *conferenceService) QueryConferences(ctx context.Context, filters []query.Filter) ([]*domain.Conference, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	plan, err := query.BuildPlan(filters)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	confs, err := s.conferenceRepo.Query(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("query conferences: %w", err)
	}
	return confs, nil
}

// recomputeAnnouncement refreshes the announcement after a seat-relevant
// mutation. The announcement is advisory, so failures are only logged.
func (s *conferenceService) recomputeAnnouncement(ctx context.Context, conf *domain.Conference) {
	if _, err := s.announcements.RecomputeAnnouncement(ctx); err != nil {
		s.logger.Warn("recompute announcement failed",
			slog.String("conference", conf.Key.Encode()),
			slog.String("error", err.Error()),
		)
	}
}

func monthOf(startDate *time.Time) int {
	if startDate == nil {
		return 0
	}
	return int(startDate.Month())
}
