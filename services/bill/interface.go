package bill

import (
	"context"

	billRepo "emireminder/database/repository/bill"
	"emireminder/models"
	"emireminder/utils"

	"go.uber.org/zap"
)

type BillService interface {
	CreateBill(ctx context.Context, bill models.Bill) (*models.BillResponse, error)
	GetBill(ctx context.Context, userID, id string) (*models.BillResponse, error)
	ListBills(ctx context.Context, filter models.BillFilter) (*models.PagedResponse[models.BillResponse], error)
	UpdateBill(ctx context.Context, userID, id string, patch models.BillPatch) (*models.BillResponse, error)
	MarkPaid(ctx context.Context, userID, id string) (*models.MarkPaidResponse, error)
	MarkUnpaid(ctx context.Context, userID, id string) (*models.BillResponse, error)
	DeleteBill(ctx context.Context, userID, id string) error
}

// ReminderPlanner is the part of the reminder service the ledger drives.
// PlanFor only computes reminders; the ledger stores them together with
// the bill write that made them necessary.
type ReminderPlanner interface {
	Generate(ctx context.Context, bill models.Bill) ([]models.Reminder, error)
	PlanFor(ctx context.Context, bill models.Bill) ([]models.Reminder, error)
}

// DefaultBillService is the production implementation.
type DefaultBillService struct {
	Repo    billRepo.BillRepository
	Planner ReminderPlanner
	Clock   utils.Clock
	Logger  *zap.Logger
}

func (s *DefaultBillService) logger() *zap.Logger {
	return utils.LoggerOr(s.Logger)
}
