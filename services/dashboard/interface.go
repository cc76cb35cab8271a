package dashboard

import (
	"context"

	billRepo "emireminder/database/repository/bill"
	"emireminder/models"
	"emireminder/utils"

	"go.uber.org/zap"
)

// DashboardService aggregates a user's bills. Every figure uses the
// computed status against today.
type DashboardService interface {
	Summary(ctx context.Context, userID string) (*models.DashboardSummary, error)
	Upcoming(ctx context.Context, userID string, days int) ([]models.BillResponse, error)
	Overdue(ctx context.Context, userID string) (*models.OverdueResponse, error)
	MonthlySummary(ctx context.Context, userID string, month, year int) (*models.MonthlySummary, error)
	Calendar(ctx context.Context, userID string, month, year int) (map[string][]models.BillResponse, error)
}

type DefaultDashboardService struct {
	Bills  billRepo.BillRepository
	Clock  utils.Clock
	Logger *zap.Logger
}
