package reminder

import (
	"context"
	"time"

	billRepo "emireminder/database/repository/bill"
	preferenceRepo "emireminder/database/repository/preference"
	reminderRepo "emireminder/database/repository/reminder"
	"emireminder/models"
	"emireminder/utils"

	"go.uber.org/zap"
)

// ReminderService plans reminders for bills and serves the reminder surface.
type ReminderService interface {
	// Planning, driven by bill mutations.
	PlanFor(ctx context.Context, bill models.Bill) ([]models.Reminder, error)
	Generate(ctx context.Context, bill models.Bill) ([]models.Reminder, error)
	CancelPending(ctx context.Context, billID string) error
	Reschedule(ctx context.Context, bill models.Bill) ([]models.Reminder, error)

	// Caller-facing operations.
	RescheduleOne(ctx context.Context, userID, reminderID string, newDate time.Time) (*models.ReminderResponse, error)
	DeleteReminder(ctx context.Context, userID, reminderID string) error
	ListReminders(ctx context.Context, filter models.ReminderFilter) (*models.PagedResponse[models.ReminderResponse], error)
	History(ctx context.Context, userID string, page models.Page) (*models.PagedResponse[models.ReminderResponse], error)
	PreviewTest(ctx context.Context, userID, billID string, channel models.Channel) (string, error)
}

// DefaultReminderService is the production implementation.
type DefaultReminderService struct {
	Reminders   reminderRepo.ReminderRepository
	Preferences preferenceRepo.PreferenceRepository
	Bills       billRepo.BillRepository
	Schedule    Schedule
	Clock       utils.Clock
	Logger      *zap.Logger
}

func (s *DefaultReminderService) logger() *zap.Logger {
	return utils.LoggerOr(s.Logger)
}
