package dashboard

import (
	"context"
	"math"
	"sort"
	"time"

	"emireminder/models"
	"emireminder/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultUpcomingDays = 7
	maxUpcomingDays     = 90
)

func (s *DefaultDashboardService) Summary(ctx context.Context, userID string) (*models.DashboardSummary, error) {
	bills, err := s.Bills.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := s.Clock.Today()
	monthStart, monthEnd := monthBounds(today.Year(), today.Month())

	out := &models.DashboardSummary{
		TotalDueAmount:     decimal.Zero,
		TotalOverdueAmount: decimal.Zero,
		TotalPaidThisMonth: decimal.Zero,
		TotalBills:         len(bills),
	}
	for _, b := range bills {
		switch models.ComputeStatus(b.Status, b.DueDate, today) {
		case models.ComputedPaid:
			out.PaidBills++
			if !b.DueDate.Before(monthStart) && !b.DueDate.After(monthEnd) {
				out.TotalPaidThisMonth = out.TotalPaidThisMonth.Add(b.Amount)
			}
		case models.ComputedOverdue:
			out.PendingBills++
			out.BillsOverdue++
			out.TotalDueAmount = out.TotalDueAmount.Add(b.Amount)
			out.TotalOverdueAmount = out.TotalOverdueAmount.Add(b.Amount)
		default:
			out.PendingBills++
			out.TotalDueAmount = out.TotalDueAmount.Add(b.Amount)
			if models.DaysBetween(today, b.DueDate) <= 7 {
				out.BillsDueNext7Days++
			}
		}
	}
	return out, nil
}

// Upcoming lists unpaid bills due between today and today+days. days
// outside 1..90 falls back to 7.
func (s *DefaultDashboardService) Upcoming(ctx context.Context, userID string, days int) ([]models.BillResponse, error) {
	if days < 1 || days > maxUpcomingDays {
		days = defaultUpcomingDays
	}
	today := s.Clock.Today()
	bills, err := s.Bills.ListDueBetween(ctx, userID, today, today.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}
	out := make([]models.BillResponse, 0, len(bills))
	for _, b := range bills {
		if b.Status != models.BillPaid {
			out = append(out, models.ToResponse(b, today))
		}
	}
	return out, nil
}

// Overdue lists overdue bills, most overdue first.
func (s *DefaultDashboardService) Overdue(ctx context.Context, userID string) (*models.OverdueResponse, error) {
	bills, err := s.Bills.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := s.Clock.Today()
	out := &models.OverdueResponse{Data: []models.BillResponse{}, TotalOverdueAmount: decimal.Zero}
	for _, b := range bills {
		if models.ComputeStatus(b.Status, b.DueDate, today) != models.ComputedOverdue {
			continue
		}
		out.Data = append(out.Data, models.ToResponse(b, today))
		out.TotalOverdueAmount = out.TotalOverdueAmount.Add(b.Amount)
	}
	sort.SliceStable(out.Data, func(i, j int) bool {
		return out.Data[i].OverdueDays > out.Data[j].OverdueDays
	})
	return out, nil
}

func (s *DefaultDashboardService) MonthlySummary(ctx context.Context, userID string, month, year int) (*models.MonthlySummary, error) {
	bills, month, year, err := s.monthBills(ctx, userID, month, year)
	if err != nil {
		return nil, err
	}

	total, paid := decimal.Zero, decimal.Zero
	byCategory := make(map[string]*models.CategoryBreakdown)
	for _, b := range bills {
		total = total.Add(b.Amount)
		if b.Status == models.BillPaid {
			paid = paid.Add(b.Amount)
		}
		cb, ok := byCategory[b.Category]
		if !ok {
			cb = &models.CategoryBreakdown{Category: b.Category, Amount: decimal.Zero}
			byCategory[b.Category] = cb
		}
		cb.Amount = cb.Amount.Add(b.Amount)
		cb.Count++
	}

	breakdown := make([]models.CategoryBreakdown, 0, len(byCategory))
	for _, cb := range byCategory {
		cb.Percentage = percent(cb.Amount, total)
		breakdown = append(breakdown, *cb)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if c := breakdown[i].Amount.Cmp(breakdown[j].Amount); c != 0 {
			return c > 0
		}
		return breakdown[i].Category < breakdown[j].Category
	})

	return &models.MonthlySummary{
		Month:             month,
		Year:              year,
		TotalAmount:       total,
		PaidAmount:        paid,
		PendingAmount:     total.Sub(paid),
		PaymentPercentage: percent(paid, total),
		CategoryBreakdown: breakdown,
	}, nil
}

// Calendar groups the bills of a month by due date.
func (s *DefaultDashboardService) Calendar(ctx context.Context, userID string, month, year int) (map[string][]models.BillResponse, error) {
	bills, _, _, err := s.monthBills(ctx, userID, month, year)
	if err != nil {
		return nil, err
	}
	today := s.Clock.Today()
	out := make(map[string][]models.BillResponse)
	for _, b := range bills {
		key := b.DueDate.Format(models.DateLayout)
		out[key] = append(out[key], models.ToResponse(b, today))
	}
	return out, nil
}

// monthBills resolves month and year, where zero means the current one,
// and loads the bills due in that month.
func (s *DefaultDashboardService) monthBills(ctx context.Context, userID string, month, year int) ([]models.Bill, int, int, error) {
	today := s.Clock.Today()
	if month == 0 {
		month = int(today.Month())
	}
	if year == 0 {
		year = today.Year()
	}
	if month < 1 || month > 12 {
		return nil, 0, 0, utils.InvalidInput("month must be between 1 and 12")
	}
	if year < 1 || year > 9999 {
		return nil, 0, 0, utils.InvalidInput("year must be between 1 and 9999")
	}

	start, end := monthBounds(year, time.Month(month))
	bills, err := s.Bills.ListDueBetween(ctx, userID, start, end)
	if err != nil {
		utils.LoggerOr(s.Logger).Error("Failed to load month", zap.String("userId", userID), zap.Error(err))
		return nil, 0, 0, err
	}
	return bills, month, year, nil
}

func monthBounds(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

// percent returns part/total as a percentage rounded to one decimal place.
func percent(part, total decimal.Decimal) float64 {
	if !total.IsPositive() {
		return 0
	}
	f, _ := part.Div(total).Mul(decimal.NewFromInt(100)).Round(1).Float64()
	return math.Round(f*10) / 10
}
