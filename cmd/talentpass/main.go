package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/talent-pass/internal/application"
	"github.com/example/talent-pass/internal/config"
	httptransport "github.com/example/talent-pass/internal/http"
	"github.com/example/talent-pass/internal/metrics"
	"github.com/example/talent-pass/internal/persistence"
	"github.com/example/talent-pass/internal/persistence/memory"
	"github.com/example/talent-pass/internal/persistence/sqlite"
	"github.com/example/talent-pass/internal/realtime"
	"github.com/example/talent-pass/internal/scheduler"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Local development overrides; absence is not an error.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	repos, closeStorage, err := openStorage(cfg)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := closeStorage(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	idGenerator := uuid.NewString
	now := time.Now

	registry := realtime.NewConnectionRegistry()
	router := realtime.NewBroadcastRouter(registry, logger, now)

	slotRepo := newSlotRepositoryAdapter(repos.slots)
	notificationRepo := newNotificationRepositoryAdapter(repos.notifications)
	settingsRepo := newSettingsRepositoryAdapter(repos.settings)
	adminRepo := newAdminActionRepositoryAdapter(repos.actions)

	slotService := application.NewSlotService(slotRepo, router, idGenerator, now)
	notificationService := application.NewNotificationService(notificationRepo, router, idGenerator, now)
	settingsService := application.NewSettingsService(settingsRepo, router, now)
	adminService := application.NewAdminService(adminRepo, notificationService, router, idGenerator, now)

	if cfg.SeedDefaultSlots {
		seeded, err := slotService.SeedDefaultSlots(ctx, cfg.SeedLinkID, cfg.SeedManagerCode)
		if err != nil {
			logger.Error("failed to seed default slots", "error", err)
			os.Exit(1)
		}
		if len(seeded) > 0 {
			logger.Info("seeded default slots", "link_id", cfg.SeedLinkID, "count", len(seeded))
		}
	}

	reminders := scheduler.NewReminderScheduler(notificationService, router, logger,
		cfg.SchedulerTick, cfg.SchedulerInitialDelay, now)
	go func() {
		if err := reminders.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("reminder scheduler stopped", "error", err)
		}
	}()

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Slots:         httptransport.NewSlotHandler(slotService, logger),
		Notifications: httptransport.NewNotificationHandler(notificationService, logger),
		Settings:      httptransport.NewSettingsHandler(settingsService, logger),
		Admin:         httptransport.NewAdminHandler(adminService, logger),
		Realtime:      realtime.NewHandler(registry, logger, now),
		Metrics:       metrics.Handler(),
		Middleware:    []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("talent pass API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

type repositories struct {
	slots         persistence.SlotRepository
	notifications persistence.NotificationRepository
	settings      persistence.SettingsRepository
	actions       persistence.AdminActionRepository
}

// openStorage builds the repository set for the configured driver. The memory
// driver keeps everything in process and loses state on restart.
func openStorage(cfg config.Config) (repositories, func() error, error) {
	if cfg.StorageDriver == "memory" {
		storage := memory.Open()
		return repositories{
			slots:         storage,
			notifications: storage,
			settings:      storage,
			actions:       storage,
		}, storage.Close, nil
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		return repositories{}, nil, err
	}
	if err := storage.Migrate(context.Background()); err != nil {
		storage.Close()
		return repositories{}, nil, err
	}
	return repositories{
		slots:         sqlite.NewSlotRepository(storage),
		notifications: sqlite.NewNotificationRepository(storage),
		settings:      sqlite.NewSettingsRepository(storage),
		actions:       sqlite.NewAdminActionRepository(storage),
	}, storage.Close, nil
}

type slotRepositoryAdapter struct {
	repo persistence.SlotRepository
}

func newSlotRepositoryAdapter(repo persistence.SlotRepository) *slotRepositoryAdapter {
	return &slotRepositoryAdapter{repo: repo}
}

func (a *slotRepositoryAdapter) CreateSlot(ctx context.Context, slot application.Slot) (application.Slot, error) {
	if err := a.repo.CreateSlot(ctx, toPersistenceSlot(slot)); err != nil {
		return application.Slot{}, err
	}
	stored, err := a.repo.GetSlot(ctx, slot.ID)
	if err != nil {
		return application.Slot{}, err
	}
	return toApplicationSlot(stored), nil
}

func (a *slotRepositoryAdapter) GetSlot(ctx context.Context, id string) (application.Slot, error) {
	stored, err := a.repo.GetSlot(ctx, id)
	if err != nil {
		return application.Slot{}, err
	}
	return toApplicationSlot(stored), nil
}

func (a *slotRepositoryAdapter) UpdateSlot(ctx context.Context, slot application.Slot) (application.Slot, error) {
	if err := a.repo.UpdateSlot(ctx, toPersistenceSlot(slot)); err != nil {
		return application.Slot{}, err
	}
	stored, err := a.repo.GetSlot(ctx, slot.ID)
	if err != nil {
		return application.Slot{}, err
	}
	return toApplicationSlot(stored), nil
}

func (a *slotRepositoryAdapter) DeleteSlot(ctx context.Context, id string) error {
	return a.repo.DeleteSlot(ctx, id)
}

func (a *slotRepositoryAdapter) ListSlotsByLink(ctx context.Context, linkID string) ([]application.Slot, error) {
	stored, err := a.repo.ListSlotsByLink(ctx, linkID)
	if err != nil {
		return nil, err
	}
	return toApplicationSlots(stored), nil
}

func (a *slotRepositoryAdapter) ListSlotsByManager(ctx context.Context, managerCode string) ([]application.Slot, error) {
	stored, err := a.repo.ListSlotsByManager(ctx, managerCode)
	if err != nil {
		return nil, err
	}
	return toApplicationSlots(stored), nil
}

func (a *slotRepositoryAdapter) ListSlotsByCandidate(ctx context.Context, candidateCode string) ([]application.Slot, error) {
	stored, err := a.repo.ListSlotsByCandidate(ctx, candidateCode)
	if err != nil {
		return nil, err
	}
	return toApplicationSlots(stored), nil
}

func toPersistenceSlot(slot application.Slot) persistence.Slot {
	return persistence.Slot{
		ID:            slot.ID,
		LinkID:        slot.LinkID,
		Label:         slot.Label,
		Date:          slot.Date,
		Time:          slot.Time,
		Status:        persistence.SlotStatus(slot.Status),
		ManagerCode:   slot.ManagerCode,
		CandidateCode: slot.CandidateCode,
		Notes:         slot.Notes,
		CreatedAt:     slot.CreatedAt,
		UpdatedAt:     slot.UpdatedAt,
	}
}

func toApplicationSlot(slot persistence.Slot) application.Slot {
	return application.Slot{
		ID:            slot.ID,
		LinkID:        slot.LinkID,
		Label:         slot.Label,
		Date:          slot.Date,
		Time:          slot.Time,
		Status:        application.SlotStatus(slot.Status),
		ManagerCode:   slot.ManagerCode,
		CandidateCode: slot.CandidateCode,
		Notes:         slot.Notes,
		CreatedAt:     slot.CreatedAt,
		UpdatedAt:     slot.UpdatedAt,
	}
}

func toApplicationSlots(slots []persistence.Slot) []application.Slot {
	out := make([]application.Slot, 0, len(slots))
	for _, slot := range slots {
		out = append(out, toApplicationSlot(slot))
	}
	return out
}

type notificationRepositoryAdapter struct {
	repo persistence.NotificationRepository
}

func newNotificationRepositoryAdapter(repo persistence.NotificationRepository) *notificationRepositoryAdapter {
	return &notificationRepositoryAdapter{repo: repo}
}

func (a *notificationRepositoryAdapter) CreateNotification(ctx context.Context, notification application.Notification) (application.Notification, error) {
	if err := a.repo.CreateNotification(ctx, toPersistenceNotification(notification)); err != nil {
		return application.Notification{}, err
	}
	stored, err := a.repo.GetNotification(ctx, notification.ID)
	if err != nil {
		return application.Notification{}, err
	}
	return toApplicationNotification(stored), nil
}

func (a *notificationRepositoryAdapter) GetNotification(ctx context.Context, id string) (application.Notification, error) {
	stored, err := a.repo.GetNotification(ctx, id)
	if err != nil {
		return application.Notification{}, err
	}
	return toApplicationNotification(stored), nil
}

func (a *notificationRepositoryAdapter) UpdateNotification(ctx context.Context, notification application.Notification) (application.Notification, error) {
	if err := a.repo.UpdateNotification(ctx, toPersistenceNotification(notification)); err != nil {
		return application.Notification{}, err
	}
	stored, err := a.repo.GetNotification(ctx, notification.ID)
	if err != nil {
		return application.Notification{}, err
	}
	return toApplicationNotification(stored), nil
}

func (a *notificationRepositoryAdapter) ListNotificationsForCode(ctx context.Context, passCode string) ([]application.Notification, error) {
	stored, err := a.repo.ListNotificationsForCode(ctx, passCode)
	if err != nil {
		return nil, err
	}
	return toApplicationNotifications(stored), nil
}

func (a *notificationRepositoryAdapter) ListPendingNotifications(ctx context.Context, reference time.Time) ([]application.Notification, error) {
	stored, err := a.repo.ListPendingNotifications(ctx, reference)
	if err != nil {
		return nil, err
	}
	return toApplicationNotifications(stored), nil
}

func toPersistenceNotification(notification application.Notification) persistence.Notification {
	return persistence.Notification{
		ID:           notification.ID,
		PassCode:     notification.PassCode,
		Type:         notification.Type,
		Title:        notification.Title,
		Body:         notification.Body,
		Priority:     persistence.NotificationPriority(notification.Priority),
		Read:         notification.Read,
		Delivered:    notification.Delivered,
		ScheduledFor: notification.ScheduledFor,
		CreatedAt:    notification.CreatedAt,
		UpdatedAt:    notification.UpdatedAt,
	}
}

func toApplicationNotification(notification persistence.Notification) application.Notification {
	return application.Notification{
		ID:           notification.ID,
		PassCode:     notification.PassCode,
		Type:         notification.Type,
		Title:        notification.Title,
		Body:         notification.Body,
		Priority:     application.NotificationPriority(notification.Priority),
		Read:         notification.Read,
		Delivered:    notification.Delivered,
		ScheduledFor: notification.ScheduledFor,
		CreatedAt:    notification.CreatedAt,
		UpdatedAt:    notification.UpdatedAt,
	}
}

func toApplicationNotifications(notifications []persistence.Notification) []application.Notification {
	out := make([]application.Notification, 0, len(notifications))
	for _, notification := range notifications {
		out = append(out, toApplicationNotification(notification))
	}
	return out
}

type settingsRepositoryAdapter struct {
	repo persistence.SettingsRepository
}

func newSettingsRepositoryAdapter(repo persistence.SettingsRepository) *settingsRepositoryAdapter {
	return &settingsRepositoryAdapter{repo: repo}
}

func (a *settingsRepositoryAdapter) UpsertSettings(ctx context.Context, settings application.PassSettings) (application.PassSettings, error) {
	if err := a.repo.UpsertSettings(ctx, toPersistenceSettings(settings)); err != nil {
		return application.PassSettings{}, err
	}
	stored, err := a.repo.GetSettings(ctx, settings.PassCode)
	if err != nil {
		return application.PassSettings{}, err
	}
	return toApplicationSettings(stored), nil
}

func (a *settingsRepositoryAdapter) GetSettings(ctx context.Context, passCode string) (application.PassSettings, error) {
	stored, err := a.repo.GetSettings(ctx, passCode)
	if err != nil {
		return application.PassSettings{}, err
	}
	return toApplicationSettings(stored), nil
}

func toPersistenceSettings(settings application.PassSettings) persistence.PassSettings {
	return persistence.PassSettings{
		PassCode:             settings.PassCode,
		Theme:                settings.Theme,
		Language:             settings.Language,
		Timezone:             settings.Timezone,
		NotificationsEnabled: settings.NotificationsEnabled,
		CreatedAt:            settings.CreatedAt,
		UpdatedAt:            settings.UpdatedAt,
	}
}

func toApplicationSettings(settings persistence.PassSettings) application.PassSettings {
	return application.PassSettings{
		PassCode:             settings.PassCode,
		Theme:                settings.Theme,
		Language:             settings.Language,
		Timezone:             settings.Timezone,
		NotificationsEnabled: settings.NotificationsEnabled,
		CreatedAt:            settings.CreatedAt,
		UpdatedAt:            settings.UpdatedAt,
	}
}

type adminActionRepositoryAdapter struct {
	repo persistence.AdminActionRepository
}

func newAdminActionRepositoryAdapter(repo persistence.AdminActionRepository) *adminActionRepositoryAdapter {
	return &adminActionRepositoryAdapter{repo: repo}
}

func (a *adminActionRepositoryAdapter) CreateAdminAction(ctx context.Context, action application.AdminAction) (application.AdminAction, error) {
	if err := a.repo.CreateAdminAction(ctx, persistence.AdminAction{
		ID:          action.ID,
		ActionType:  action.ActionType,
		TargetCodes: action.TargetCodes,
		PerformedBy: action.PerformedBy,
		Result:      action.Result,
		Status:      action.Status,
		CreatedAt:   action.CreatedAt,
	}); err != nil {
		return application.AdminAction{}, err
	}
	return action, nil
}

func (a *adminActionRepositoryAdapter) ListAdminActions(ctx context.Context) ([]application.AdminAction, error) {
	stored, err := a.repo.ListAdminActions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]application.AdminAction, 0, len(stored))
	for _, action := range stored {
		out = append(out, application.AdminAction{
			ID:          action.ID,
			ActionType:  action.ActionType,
			TargetCodes: action.TargetCodes,
			PerformedBy: action.PerformedBy,
			Result:      action.Result,
			Status:      action.Status,
			CreatedAt:   action.CreatedAt,
		})
	}
	return out, nil
}
