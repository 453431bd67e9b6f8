// Package app wires the storage, adapters and services into a runnable
// daemon. Embedding programs reach the services through the accessors; Run
// drives the background pieces (queue worker, announcement scheduler).
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"conferencecentral/config"
	"conferencecentral/internal/adapters/auth"
	"conferencecentral/internal/adapters/cache"
	"conferencecentral/internal/adapters/email"
	"conferencecentral/internal/adapters/queue"
	"conferencecentral/internal/domain"
	"conferencecentral/internal/repository/postgres"
	"conferencecentral/internal/scheduler"
	"conferencecentral/internal/services"
)

const serviceTimeout = 10 * time.Second

type App struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB

	queue     *queue.InProcess
	scheduler *scheduler.Scheduler

	identity      domain.IdentityResolver
	conferences   domain.ConferenceService
	profiles      domain.ProfileService
	attendees     domain.AttendeeService
	sessions      domain.SessionService
	announcements domain.AnnouncementService
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := postgres.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	a.db = db
	logger.Info("database ready", slog.String("environment", cfg.Environment))

	if err := a.initServices(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) initServices() error {
	conferenceRepo := postgres.NewConferenceRepository(a.db)
	profileRepo := postgres.NewProfileRepository(a.db)
	sessionRepo := postgres.NewSessionRepository(a.db)
	speakerRepo := postgres.NewSpeakerRepository(a.db)
	registrar := postgres.NewRegistrarRepository(a.db)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    a.cfg.MailProvider,
		FromAddress: a.cfg.MailFromAddress,
		FromName:    a.cfg.MailFromName,
		SES: email.SESConfig{
			Region:             a.cfg.SESRegion,
			AccessKeyID:        a.cfg.SESAccessKeyID,
			SecretAccessKey:    a.cfg.SESSecretAccessKey,
			InsecureSkipVerify: a.cfg.SESInsecureSkipVerify,
		},
	}, a.logger)
	if err != nil {
		return fmt.Errorf("init mailer: %w", err)
	}
	a.queue = queue.NewInProcess(mailer, email.NewTemplateRenderer(), a.logger)

	appCache := cache.NewMemory()
	a.identity = auth.NewJWTCodec(a.cfg.JWTSecret)
	a.announcements = services.NewAnnouncementService(conferenceRepo, appCache, serviceTimeout)
	a.conferences = services.NewConferenceService(conferenceRepo, profileRepo, a.queue, a.announcements, a.logger, serviceTimeout)
	a.profiles = services.NewProfileService(profileRepo, serviceTimeout)
	a.attendees = services.NewAttendeeService(registrar, conferenceRepo, sessionRepo, profileRepo, a.announcements, a.logger, serviceTimeout)
	a.sessions = services.NewSessionService(sessionRepo, conferenceRepo, speakerRepo, appCache, a.logger, serviceTimeout)

	a.scheduler = scheduler.New(a.announcements, a.cfg.AnnouncementInterval, a.logger)
	return nil
}

// Run starts the announcement scheduler and blocks until ctx is cancelled,
// then drains the task queue and closes the database.
func (a *App) Run(ctx context.Context) error {
	// Warm the announcement so reads are correct before the first tick.
	if _, err := a.announcements.RecomputeAnnouncement(ctx); err != nil {
		a.logger.Warn("initial announcement recompute failed", slog.String("error", err.Error()))
	}

	go a.scheduler.Start(ctx)

	<-ctx.Done()
	a.logger.Info("shutting down")
	a.queue.Close()
	return a.db.Close()
}

func (a *App) Identity() domain.IdentityResolver         { return a.identity }
func (a *App) Conferences() domain.ConferenceService     { return a.conferences }
func (a *App) Profiles() domain.ProfileService           { return a.profiles }
func (a *App) Attendees() domain.AttendeeService         { return a.attendees }
func (a *App) Sessions() domain.SessionService           { return a.sessions }
func (a *App) Announcements() domain.AnnouncementService { return a.announcements }
