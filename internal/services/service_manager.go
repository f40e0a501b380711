package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tutorlab/tutoring-service/internal/events"
	"github.com/tutorlab/tutoring-service/internal/messenger"
	"github.com/tutorlab/tutoring-service/internal/models"
	"github.com/tutorlab/tutoring-service/internal/repositories"
	"github.com/tutorlab/tutoring-service/internal/validator"
)

// Bootstrap credentials for the very first login. The password is expected to
// be changed immediately through the password endpoint.
const (
	BootstrapUsername = "admin"
	BootstrapPassword = "12345678"
)

// ServiceManagerConfig carries everything the services need beyond the
// repository.
type ServiceManagerConfig struct {
	Repo       repositories.Repository
	Publisher  events.EventPublisher
	Subscriber events.EventSubscriber
	Messenger  messenger.Messenger
	Logger     *slog.Logger

	TokenSecret string
	TokenTTL    time.Duration

	Timezone         *time.Location
	ReminderInterval time.Duration
}

type serviceManager struct {
	auth     AuthService
	user     UserService
	schedule ScheduleService
	homework MaterialService[models.Homework]
	note     MaterialService[models.Note]
	link     LinkService

	dispatcher *NotificationDispatcher
	reminder   *ReminderScanner

	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewServiceManager(cfg ServiceManagerConfig) ServiceManager {
	v := validator.New()

	return &serviceManager{
		auth:     NewAuthService(cfg.Repo, cfg.Logger, v, cfg.TokenSecret, cfg.TokenTTL),
		user:     NewUserService(cfg.Repo, cfg.Logger, v),
		schedule: NewScheduleService(cfg.Repo, cfg.Publisher, cfg.Logger, v),
		homework: NewHomeworkService(cfg.Repo, cfg.Publisher, cfg.Logger, v),
		note:     NewNoteService(cfg.Repo, cfg.Publisher, cfg.Logger, v),
		link:     NewLinkService(cfg.Repo, cfg.Logger),

		dispatcher: NewNotificationDispatcher(cfg.Subscriber, cfg.Messenger, cfg.Logger, cfg.Timezone),
		reminder:   NewReminderScanner(cfg.Repo, cfg.Publisher, cfg.Logger, cfg.Timezone, cfg.ReminderInterval),

		repo:      cfg.Repo,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
	}
}

func (m *serviceManager) Auth() AuthService                          { return m.auth }
func (m *serviceManager) User() UserService                          { return m.user }
func (m *serviceManager) Schedule() ScheduleService                  { return m.schedule }
func (m *serviceManager) Homework() MaterialService[models.Homework] { return m.homework }
func (m *serviceManager) Note() MaterialService[models.Note]         { return m.note }
func (m *serviceManager) Link() LinkService                          { return m.link }

func (m *serviceManager) Dispatcher() *NotificationDispatcher { return m.dispatcher }
func (m *serviceManager) Reminder() *ReminderScanner          { return m.reminder }

// Initialize verifies the database is reachable and seeds the bootstrap
// superuser.
func (m *serviceManager) Initialize(ctx context.Context) error {
	if err := m.repo.Ping(ctx); err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}
	if err := m.auth.EnsureSuperuser(ctx, BootstrapUsername, BootstrapPassword); err != nil {
		return err
	}

	m.logger.Info("Services initialized")
	return nil
}

func (m *serviceManager) HealthCheck(ctx context.Context) error {
	return m.repo.Ping(ctx)
}

func (m *serviceManager) Shutdown(ctx context.Context) error {
	if err := m.publisher.Close(); err != nil {
		m.logger.Warn("Failed to close event publisher", "error", err)
	}
	m.logger.Info("Services shut down")
	return nil
}
