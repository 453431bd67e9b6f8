package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"conferencecentral/internal/domain"
)

// Cache keys for the advisory announcement slots.
const (
	announcementsCacheKey   = "RECENT_ANNOUNCEMENTS"
	featuredSpeakerCacheKey = "FEATURED_SPEAKER"
)

// nearlySoldOutSeats is the inclusive seat threshold below which a
// conference counts as nearly sold out.
const nearlySoldOutSeats = 5

const announcementTemplate = "Last chance to attend! The following conferences are nearly sold out: %s"

type announcementService struct {
	conferenceRepo domain.ConferenceRepository
	cache          domain.Cache
	contextTimeout time.Duration
}

// NewAnnouncementService creates an AnnouncementService backed by the given
// repository and cache.
func NewAnnouncementService(conferenceRepo domain.ConferenceRepository, cache domain.Cache, timeout time.Duration) domain.AnnouncementService {
	return &announcementService{
		conferenceRepo: conferenceRepo,
		cache:          cache,
		contextTimeout: timeout,
	}
}

func (s *announcementService) RecomputeAnnouncement(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	confs, err := s.conferenceRepo.ListNearlySoldOut(ctx, nearlySoldOutSeats)
	if err != nil {
		return "", fmt.Errorf("list nearly sold out conferences: %w", err)
	}

	if len(confs) == 0 {
		// Delete rather than store an empty sentence so readers observe
		// "absent" instead of a stale announcement.
		if err := s.cache.Delete(ctx, announcementsCacheKey); err != nil {
			return "", fmt.Errorf("delete announcement: %w", err)
		}
		return "", nil
	}

	names := make([]string, len(confs))
	for i, conf := range confs {
		names[i] = conf.Name
	}
	announcement := fmt.Sprintf(announcementTemplate, strings.Join(names, ", "))
	if err := s.cache.Set(ctx, announcementsCacheKey, announcement); err != nil {
		return "", fmt.Errorf("set announcement: %w", err)
	}
	return announcement, nil
}

func (s *announcementService) Announcement(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	value, ok, err := s.cache.Get(ctx, announcementsCacheKey)
	if err != nil {
		return "", fmt.Errorf("get announcement: %w", err)
	}
	if !ok {
		return "", nil
	}
	return value, nil
}
