package billRepo

import (
	"context"
	"time"

	"emireminder/models"
)

// BillRepository defines methods for bill data access.
type BillRepository interface {
	// Create inserts a bill. ID, Version and timestamps are assigned when empty.
	Create(ctx context.Context, bill *models.Bill) error
	// GetByID returns the bill only when it belongs to userID.
	GetByID(ctx context.Context, userID, id string) (*models.Bill, error)
	// Update persists bill if its stored version still equals bill.Version,
	// then bumps bill.Version. A stale version yields a Conflict error.
	Update(ctx context.Context, bill *models.Bill) error
	// UpdateWithReminders persists bill like Update and, in the same
	// transaction, replaces its pending reminders with fresh.
	UpdateWithReminders(ctx context.Context, bill *models.Bill, fresh []models.Reminder) error
	// Settle persists paid like Update and drops its pending reminders. A
	// non-nil next is inserted together with nextReminders. Either every
	// write commits or none does.
	Settle(ctx context.Context, paid *models.Bill, next *models.Bill, nextReminders []models.Reminder) error
	// Delete removes the bill and every reminder it owns.
	Delete(ctx context.Context, userID, id string) error
	// List returns one page of bills matching filter and the total match count.
	List(ctx context.Context, filter models.BillFilter) ([]models.Bill, int, error)
	// ListByUser returns every bill of a user ordered by due date.
	ListByUser(ctx context.Context, userID string) ([]models.Bill, error)
	// ListDueBetween returns bills with from <= dueDate <= to, ordered by due date.
	ListDueBetween(ctx context.Context, userID string, from, to time.Time) ([]models.Bill, error)
}
