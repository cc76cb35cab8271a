package dashboard

import (
	"context"
	"testing"
	"time"

	"emireminder/database/sqlite"
	"emireminder/models"
	"emireminder/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

type DashboardTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *sqlite.Store
	svc   *DefaultDashboardService
	ids   map[string]string
}

func (s *DashboardTestSuite) SetupTest() {
	store, err := sqlite.Open(":memory:")
	require.NoError(s.T(), err)
	s.store = store
	s.ctx = context.Background()
	s.ids = make(map[string]string)

	ist := time.FixedZone("IST", 5*3600+30*60)
	// 2025-01-15 09:00 IST
	s.svc = &DefaultDashboardService{
		Bills:  store.Bills,
		Clock:  utils.FixedClock(time.Date(2025, 1, 15, 3, 30, 0, 0, time.UTC), ist),
		Logger: zaptest.NewLogger(s.T()),
	}

	s.seed("A", models.CategoryEMI, 1000, 2025, 1, 10, models.BillDue)
	s.seed("B", models.CategoryUtilities, 500, 2025, 1, 5, models.BillDue)
	s.seed("C", models.CategorySubscriptions, 200, 2025, 1, 20, models.BillDue)
	s.seed("D", models.CategoryEMI, 3000, 2025, 1, 31, models.BillDue)
	s.seed("E", models.CategoryCreditCard, 800, 2025, 1, 12, models.BillPaid)
	s.seed("F", models.CategoryEMI, 400, 2024, 12, 20, models.BillPaid)
	s.seed("other", models.CategoryEMI, 9999, 2025, 1, 16, models.BillDue, "u2")
}

func (s *DashboardTestSuite) TearDownTest() {
	s.store.Close()
}

func (s *DashboardTestSuite) seed(title, category string, amount int64, y int, m time.Month, d int, status models.BillStatus, user ...string) {
	userID := "u1"
	if len(user) > 0 {
		userID = user[0]
	}
	b := models.Bill{
		UserID:    userID,
		Title:     title,
		Category:  category,
		Amount:    decimal.NewFromInt(amount),
		DueDate:   time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Frequency: models.FrequencyMonthly,
		Status:    status,
	}
	require.NoError(s.T(), s.store.Bills.Create(s.ctx, &b))
	s.ids[title] = b.ID
}

func (s *DashboardTestSuite) TestSummary() {
	sum, err := s.svc.Summary(s.ctx, "u1")
	require.NoError(s.T(), err)

	assert.Equal(s.T(), "4700", sum.TotalDueAmount.String())
	assert.Equal(s.T(), "1500", sum.TotalOverdueAmount.String())
	assert.Equal(s.T(), "800", sum.TotalPaidThisMonth.String())
	assert.Equal(s.T(), 1, sum.BillsDueNext7Days)
	assert.Equal(s.T(), 2, sum.BillsOverdue)
	assert.Equal(s.T(), 6, sum.TotalBills)
	assert.Equal(s.T(), 2, sum.PaidBills)
	assert.Equal(s.T(), 4, sum.PendingBills)
}

func (s *DashboardTestSuite) TestSummaryEmpty() {
	sum, err := s.svc.Summary(s.ctx, "nobody")
	require.NoError(s.T(), err)
	assert.True(s.T(), sum.TotalDueAmount.IsZero())
	assert.Zero(s.T(), sum.TotalBills)
}

func (s *DashboardTestSuite) TestUpcoming() {
	week, err := s.svc.Upcoming(s.ctx, "u1", 0)
	require.NoError(s.T(), err)
	require.Len(s.T(), week, 1)
	assert.Equal(s.T(), "C", week[0].Title)
	assert.True(s.T(), week[0].IsDueWithin7Days)

	month, err := s.svc.Upcoming(s.ctx, "u1", 30)
	require.NoError(s.T(), err)
	require.Len(s.T(), month, 2)
	assert.Equal(s.T(), []string{"C", "D"}, []string{month[0].Title, month[1].Title})

	clamped, err := s.svc.Upcoming(s.ctx, "u1", 91)
	require.NoError(s.T(), err)
	assert.Len(s.T(), clamped, 1)
}

func (s *DashboardTestSuite) TestOverdueOldestFirst() {
	out, err := s.svc.Overdue(s.ctx, "u1")
	require.NoError(s.T(), err)
	require.Len(s.T(), out.Data, 2)
	assert.Equal(s.T(), "B", out.Data[0].Title)
	assert.Equal(s.T(), 10, out.Data[0].OverdueDays)
	assert.Equal(s.T(), "A", out.Data[1].Title)
	assert.Equal(s.T(), 5, out.Data[1].OverdueDays)
	assert.Equal(s.T(), "1500", out.TotalOverdueAmount.String())
}

func (s *DashboardTestSuite) TestMonthlySummary() {
	out, err := s.svc.MonthlySummary(s.ctx, "u1", 0, 0)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), 1, out.Month)
	assert.Equal(s.T(), 2025, out.Year)
	assert.Equal(s.T(), "5500", out.TotalAmount.String())
	assert.Equal(s.T(), "800", out.PaidAmount.String())
	assert.Equal(s.T(), "4700", out.PendingAmount.String())
	assert.Equal(s.T(), 14.5, out.PaymentPercentage)

	require.Len(s.T(), out.CategoryBreakdown, 4)
	want := []struct {
		category string
		amount   string
		count    int
		pct      float64
	}{
		{models.CategoryEMI, "4000", 2, 72.7},
		{models.CategoryCreditCard, "800", 1, 14.5},
		{models.CategoryUtilities, "500", 1, 9.1},
		{models.CategorySubscriptions, "200", 1, 3.6},
	}
	for i, w := range want {
		got := out.CategoryBreakdown[i]
		assert.Equal(s.T(), w.category, got.Category)
		assert.Equal(s.T(), w.amount, got.Amount.String())
		assert.Equal(s.T(), w.count, got.Count)
		assert.Equal(s.T(), w.pct, got.Percentage)
	}
}

func (s *DashboardTestSuite) TestMonthlySummaryEmptyMonth() {
	out, err := s.svc.MonthlySummary(s.ctx, "u1", 6, 2030)
	require.NoError(s.T(), err)
	assert.True(s.T(), out.TotalAmount.IsZero())
	assert.Zero(s.T(), out.PaymentPercentage)
	assert.Empty(s.T(), out.CategoryBreakdown)
}

func (s *DashboardTestSuite) TestMonthValidation() {
	_, err := s.svc.MonthlySummary(s.ctx, "u1", 13, 2025)
	assert.Equal(s.T(), utils.KindInvalidInput, utils.KindOf(err))

	_, err = s.svc.Calendar(s.ctx, "u1", -1, 2025)
	assert.Equal(s.T(), utils.KindInvalidInput, utils.KindOf(err))
}

func (s *DashboardTestSuite) TestCalendar() {
	cal, err := s.svc.Calendar(s.ctx, "u1", 1, 2025)
	require.NoError(s.T(), err)
	assert.Len(s.T(), cal, 5)
	require.Len(s.T(), cal["2025-01-10"], 1)
	assert.Equal(s.T(), s.ids["A"], cal["2025-01-10"][0].ID)
	assert.Equal(s.T(), models.ComputedPaid, cal["2025-01-12"][0].ComputedStatus)

	dec, err := s.svc.Calendar(s.ctx, "u1", 12, 2024)
	require.NoError(s.T(), err)
	assert.Len(s.T(), dec, 1)
}

func TestDashboardSuite(t *testing.T) {
	suite.Run(t, new(DashboardTestSuite))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, percent(decimal.NewFromInt(5), decimal.Zero))
	assert.Equal(t, 33.3, percent(decimal.NewFromInt(1), decimal.NewFromInt(3)))
	assert.Equal(t, 100.0, percent(decimal.NewFromInt(7), decimal.NewFromInt(7)))
}
