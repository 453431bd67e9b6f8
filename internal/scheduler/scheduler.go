// Package scheduler periodically refreshes the nearly-sold-out announcement
// so seat changes made outside this process still surface.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

type announcementRecomputer interface {
	RecomputeAnnouncement(ctx context.Context) (string, error)
}

type Scheduler struct {
	announcements announcementRecomputer
	interval      time.Duration
	logger        *slog.Logger
}

func New(announcements announcementRecomputer, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		announcements: announcements,
		interval:      interval,
		logger:        logger,
	}
}

// Start runs the refresh loop until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("announcement scheduler started",
		slog.Duration("interval", s.interval),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("announcement scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	announcement, err := s.announcements.RecomputeAnnouncement(ctx)
	if err != nil {
		s.logger.Error("failed to recompute announcement",
			slog.String("error", err.Error()),
		)
		return
	}
	if announcement != "" {
		s.logger.Info("announcement refreshed",
			slog.String("announcement", announcement),
		)
	}
}
