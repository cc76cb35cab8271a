package reminderRepo

import (
	"context"
	"time"

	"emireminder/models"
)

// ReminderRepository defines methods for reminder data access.
type ReminderRepository interface {
	// CreateMany inserts reminders in one batch.
	CreateMany(ctx context.Context, reminders []models.Reminder) error
	// DeletePending removes the pending reminders of a bill and reports how many went.
	DeletePending(ctx context.Context, billID string) (int64, error)
	// ReplacePending atomically swaps the pending reminders of a bill for fresh.
	ReplacePending(ctx context.Context, billID string, fresh []models.Reminder) error
	// ListDue returns pending reminders whose fire time is at or before now.
	ListDue(ctx context.Context, now time.Time) ([]models.Reminder, error)
	// SaveOutcomes persists the status and sentAt of reminders as one batch.
	// Rows no longer pending are left untouched.
	SaveOutcomes(ctx context.Context, reminders []models.Reminder) error
	// GetByID returns the reminder only when it belongs to userID.
	GetByID(ctx context.Context, userID, id string) (*models.Reminder, error)
	// Reschedule persists a new fire time, status, sentAt and delivery key.
	Reschedule(ctx context.Context, reminder *models.Reminder) error
	// Delete removes a reminder owned by userID.
	Delete(ctx context.Context, userID, id string) error
	// List returns one page of reminders matching filter and the total count.
	List(ctx context.Context, filter models.ReminderFilter) ([]models.Reminder, int, error)
	// ListByBill returns every reminder of a bill ordered by fire time.
	ListByBill(ctx context.Context, billID string) ([]models.Reminder, error)
}
