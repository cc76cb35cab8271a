package sqlite

import (
	"context"
	"testing"
	"time"

	"emireminder/models"
	"emireminder/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func (s *StoreTestSuite) SetupTest() {
	store, err := Open(":memory:")
	require.NoError(s.T(), err, "failed to create test database")
	s.store = store
	s.ctx = context.Background()
}

func (s *StoreTestSuite) TearDownTest() {
	if s.store != nil {
		s.store.Close()
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *StoreTestSuite) newBill(userID, title string, due time.Time, amount string) *models.Bill {
	b := &models.Bill{
		UserID:      userID,
		Title:       title,
		Category:    models.CategoryEMI,
		Amount:      decimal.RequireFromString(amount),
		DueDate:     due,
		Frequency:   models.FrequencyMonthly,
		IsRecurring: true,
		Status:      models.BillDue,
	}
	require.NoError(s.T(), s.store.Bills.Create(s.ctx, b))
	return b
}

func pending(billID, userID string, fireAt time.Time) models.Reminder {
	return models.Reminder{
		ID:          uuid.NewString(),
		BillID:      billID,
		UserID:      userID,
		FireAt:      fireAt,
		Message:     "pay",
		Channel:     models.ChannelPush,
		Status:      models.ReminderPending,
		DeliveryKey: uuid.NewString(),
		CreatedAt:   fireAt,
	}
}

func (s *StoreTestSuite) TestBillRoundTrip() {
	b := s.newBill("u1", "Car loan", date(2025, 1, 10), "12500.50")
	assert.NotEmpty(s.T(), b.ID)
	assert.Equal(s.T(), 1, b.Version)

	got, err := s.store.Bills.GetByID(s.ctx, "u1", b.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Car loan", got.Title)
	assert.True(s.T(), got.Amount.Equal(decimal.RequireFromString("12500.50")))
	assert.True(s.T(), got.DueDate.Equal(date(2025, 1, 10)))
	assert.Equal(s.T(), models.BillDue, got.Status)
	assert.True(s.T(), got.IsRecurring)
}

func (s *StoreTestSuite) TestGetBillOfAnotherUserIsNotFound() {
	b := s.newBill("u1", "Rent", date(2025, 1, 10), "100")

	_, err := s.store.Bills.GetByID(s.ctx, "u2", b.ID)
	assert.True(s.T(), utils.IsNotFound(err))
}

func (s *StoreTestSuite) TestUpdateRejectsStaleVersion() {
	b := s.newBill("u1", "Rent", date(2025, 1, 10), "100")
	stale := *b

	b.Title = "Rent v2"
	require.NoError(s.T(), s.store.Bills.Update(s.ctx, b))
	assert.Equal(s.T(), 2, b.Version)

	stale.Title = "lost update"
	err := s.store.Bills.Update(s.ctx, &stale)
	assert.Equal(s.T(), utils.KindConflict, utils.KindOf(err))

	got, err := s.store.Bills.GetByID(s.ctx, "u1", b.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Rent v2", got.Title)
}

func (s *StoreTestSuite) TestDeleteBillCascadesReminders() {
	b := s.newBill("u1", "Rent", date(2025, 1, 10), "100")
	require.NoError(s.T(), s.store.Reminders.CreateMany(s.ctx, []models.Reminder{
		pending(b.ID, "u1", date(2025, 1, 3)),
		pending(b.ID, "u1", date(2025, 1, 7)),
	}))

	require.NoError(s.T(), s.store.Bills.Delete(s.ctx, "u1", b.ID))

	left, err := s.store.Reminders.ListByBill(s.ctx, b.ID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), left)

	err = s.store.Bills.Delete(s.ctx, "u1", b.ID)
	assert.True(s.T(), utils.IsNotFound(err))
}

func (s *StoreTestSuite) TestListBillsFiltersSortsAndPages() {
	today := date(2025, 1, 15)
	s.newBill("u1", "A", date(2025, 1, 10), "300")
	s.newBill("u1", "B", date(2025, 1, 20), "100")
	paid := s.newBill("u1", "C", date(2025, 1, 5), "200")
	s.newBill("u2", "other", date(2025, 1, 1), "1")

	paid.Status = models.BillPaid
	require.NoError(s.T(), s.store.Bills.Update(s.ctx, paid))

	overdue, total, err := s.store.Bills.List(s.ctx, models.BillFilter{UserID: "u1", Status: "overdue", Today: today})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, total)
	require.Len(s.T(), overdue, 1)
	assert.Equal(s.T(), "A", overdue[0].Title)

	byAmount, total, err := s.store.Bills.List(s.ctx, models.BillFilter{UserID: "u1", Sort: "amount", Desc: true})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 3, total)
	require.Len(s.T(), byAmount, 3)
	assert.Equal(s.T(), []string{"A", "C", "B"}, []string{byAmount[0].Title, byAmount[1].Title, byAmount[2].Title})

	page2, total, err := s.store.Bills.List(s.ctx, models.BillFilter{UserID: "u1", Page: models.Page{Number: 2, Size: 2}})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 3, total)
	require.Len(s.T(), page2, 1)
	assert.Equal(s.T(), "B", page2[0].Title)
}

func (s *StoreTestSuite) TestListDueBetween() {
	s.newBill("u1", "Jan", date(2025, 1, 31), "1")
	s.newBill("u1", "Feb", date(2025, 2, 1), "1")
	s.newBill("u1", "Feb end", date(2025, 2, 28), "1")

	bills, err := s.store.Bills.ListDueBetween(s.ctx, "u1", date(2025, 2, 1), date(2025, 2, 28))
	require.NoError(s.T(), err)
	require.Len(s.T(), bills, 2)
	assert.Equal(s.T(), "Feb", bills[0].Title)
}

func (s *StoreTestSuite) TestReplacePendingKeepsHistory() {
	b := s.newBill("u1", "Rent", date(2025, 1, 10), "100")
	sent := pending(b.ID, "u1", date(2025, 1, 3))
	sent.Status = models.ReminderSent
	sentAt := date(2025, 1, 3).Add(4 * time.Hour)
	sent.SentAt = &sentAt
	old := pending(b.ID, "u1", date(2025, 1, 7))
	require.NoError(s.T(), s.store.Reminders.CreateMany(s.ctx, []models.Reminder{sent, old}))

	fresh := pending(b.ID, "u1", date(2025, 2, 7))
	require.NoError(s.T(), s.store.Reminders.ReplacePending(s.ctx, b.ID, []models.Reminder{fresh}))

	all, err := s.store.Reminders.ListByBill(s.ctx, b.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 2)
	assert.Equal(s.T(), sent.ID, all[0].ID)
	assert.Equal(s.T(), models.ReminderSent, all[0].Status)
	require.NotNil(s.T(), all[0].SentAt)
	assert.True(s.T(), all[0].SentAt.Equal(sentAt))
	assert.Equal(s.T(), fresh.ID, all[1].ID)
}

func (s *StoreTestSuite) TestReplacePendingRollsBackOnFailure() {
	b := s.newBill("u1", "Rent", date(2025, 1, 10), "100")
	old := pending(b.ID, "u1", date(2025, 1, 7))
	require.NoError(s.T(), s.store.Reminders.CreateMany(s.ctx, []models.Reminder{old}))

	dup := pending(b.ID, "u1", date(2025, 2, 7))
	err := s.store.Reminders.ReplacePending(s.ctx, b.ID, []models.Reminder{dup, dup})
	require.Error(s.T(), err)

	all, err := s.store.Reminders.ListByBill(s.ctx, b.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 1)
	assert.Equal(s.T(), old.ID, all[0].ID)
}

func (s *StoreTestSuite) TestListDueAndSaveOutcomes() {
	b := s.newBill("u1", "Rent", date(2025, 1, 10), "100")
	now := date(2025, 1, 7).Add(4 * time.Hour)
	due := pending(b.ID, "u1", date(2025, 1, 7).Add(3*time.Hour+30*time.Minute))
	later := pending(b.ID, "u1", date(2025, 1, 10).Add(3*time.Hour+30*time.Minute))
	require.NoError(s.T(), s.store.Reminders.CreateMany(s.ctx, []models.Reminder{due, later}))

	got, err := s.store.Reminders.ListDue(s.ctx, now)
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 1)
	assert.Equal(s.T(), due.ID, got[0].ID)

	got[0].Status = models.ReminderSent
	got[0].SentAt = &now
	require.NoError(s.T(), s.store.Reminders.SaveOutcomes(s.ctx, got))

	again, err := s.store.Reminders.ListDue(s.ctx, now)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), again)

	stored, err := s.store.Reminders.GetByID(s.ctx, "u1", due.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.ReminderSent, stored.Status)
	require.NotNil(s.T(), stored.SentAt)
	assert.True(s.T(), stored.SentAt.Equal(now))
}

func (s *StoreTestSuite) TestSaveOutcomesSkipsRowsNoLongerPending() {
	b := s.newBill("u1", "Rent", date(2025, 1, 10), "100")
	r := pending(b.ID, "u1", date(2025, 1, 7))
	require.NoError(s.T(), s.store.Reminders.CreateMany(s.ctx, []models.Reminder{r}))

	r.Status = models.ReminderFailed
	require.NoError(s.T(), s.store.Reminders.SaveOutcomes(s.ctx, []models.Reminder{r}))

	r.Status = models.ReminderSent
	require.NoError(s.T(), s.store.Reminders.SaveOutcomes(s.ctx, []models.Reminder{r}))

	stored, err := s.store.Reminders.GetByID(s.ctx, "u1", r.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.ReminderFailed, stored.Status)
}

func (s *StoreTestSuite) TestSaveOutcomesSkipsRescheduledRows() {
	b := s.newBill("u1", "Rent", date(2025, 1, 10), "100")
	r := pending(b.ID, "u1", date(2025, 1, 7))
	require.NoError(s.T(), s.store.Reminders.CreateMany(s.ctx, []models.Reminder{r}))

	// The reminder moves while a sweep holds the old copy.
	moved := r
	moved.FireAt = date(2025, 1, 9)
	moved.DeliveryKey = uuid.NewString()
	require.NoError(s.T(), s.store.Reminders.Reschedule(s.ctx, &moved))

	stale := r
	stale.Status = models.ReminderSent
	sentAt := date(2025, 1, 7).Add(4 * time.Hour)
	stale.SentAt = &sentAt
	require.NoError(s.T(), s.store.Reminders.SaveOutcomes(s.ctx, []models.Reminder{stale}))

	stored, err := s.store.Reminders.GetByID(s.ctx, "u1", r.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.ReminderPending, stored.Status)
	assert.Nil(s.T(), stored.SentAt)
	assert.Equal(s.T(), moved.DeliveryKey, stored.DeliveryKey)
	assert.True(s.T(), stored.FireAt.Equal(moved.FireAt))
}

func (s *StoreTestSuite) TestUpdateWithRemindersSwapsPending() {
	b := s.newBill("u1", "Rent", date(2025, 1, 10), "100")
	old := pending(b.ID, "u1", date(2025, 1, 7))
	require.NoError(s.T(), s.store.Reminders.CreateMany(s.ctx, []models.Reminder{old}))

	b.DueDate = date(2025, 1, 20)
	fresh := pending(b.ID, "u1", date(2025, 1, 17))
	require.NoError(s.T(), s.store.Bills.UpdateWithReminders(s.ctx, b, []models.Reminder{fresh}))
	assert.Equal(s.T(), 2, b.Version)

	stored, err := s.store.Bills.GetByID(s.ctx, "u1", b.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), date(2025, 1, 20), stored.DueDate)
	all, err := s.store.Reminders.ListByBill(s.ctx, b.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 1)
	assert.Equal(s.T(), fresh.ID, all[0].ID)
}

func (s *StoreTestSuite) TestUpdateWithRemindersRollsBackOnFailure() {
	b := s.newBill("u1", "Rent", date(2025, 1, 10), "100")
	old := pending(b.ID, "u1", date(2025, 1, 7))
	require.NoError(s.T(), s.store.Reminders.CreateMany(s.ctx, []models.Reminder{old}))

	b.DueDate = date(2025, 1, 20)
	dup := pending(b.ID, "u1", date(2025, 1, 17))
	require.Error(s.T(), s.store.Bills.UpdateWithReminders(s.ctx, b, []models.Reminder{dup, dup}))
	assert.Equal(s.T(), 1, b.Version)

	stored, err := s.store.Bills.GetByID(s.ctx, "u1", b.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), date(2025, 1, 10), stored.DueDate)
	assert.Equal(s.T(), 1, stored.Version)
	all, err := s.store.Reminders.ListByBill(s.ctx, b.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 1)
	assert.Equal(s.T(), old.ID, all[0].ID)
}

func (s *StoreTestSuite) TestSettleInsertsSuccessor() {
	b := s.newBill("u1", "Rent", date(2025, 1, 10), "100")
	require.NoError(s.T(), s.store.Reminders.CreateMany(s.ctx, []models.Reminder{pending(b.ID, "u1", date(2025, 1, 7))}))

	b.Status = models.BillPaid
	next := b.Successor(date(2025, 2, 10))
	next.ID = uuid.NewString()
	nextReminder := pending(next.ID, "u1", date(2025, 2, 7))
	require.NoError(s.T(), s.store.Bills.Settle(s.ctx, b, &next, []models.Reminder{nextReminder}))
	assert.Equal(s.T(), 2, b.Version)
	assert.Equal(s.T(), 1, next.Version)

	paid, err := s.store.Bills.GetByID(s.ctx, "u1", b.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.BillPaid, paid.Status)
	left, err := s.store.Reminders.ListByBill(s.ctx, b.ID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), left)

	successor, err := s.store.Bills.GetByID(s.ctx, "u1", next.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), date(2025, 2, 10), successor.DueDate)
	planned, err := s.store.Reminders.ListByBill(s.ctx, next.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), planned, 1)
}

func (s *StoreTestSuite) TestSettleRollsBackOnFailure() {
	b := s.newBill("u1", "Rent", date(2025, 1, 10), "100")
	old := pending(b.ID, "u1", date(2025, 1, 7))
	require.NoError(s.T(), s.store.Reminders.CreateMany(s.ctx, []models.Reminder{old}))

	b.Status = models.BillPaid
	next := b.Successor(date(2025, 2, 10))
	next.ID = uuid.NewString()
	dup := pending(next.ID, "u1", date(2025, 2, 7))
	require.Error(s.T(), s.store.Bills.Settle(s.ctx, b, &next, []models.Reminder{dup, dup}))

	stored, err := s.store.Bills.GetByID(s.ctx, "u1", b.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.BillDue, stored.Status)
	bills, err := s.store.Bills.ListByUser(s.ctx, "u1")
	require.NoError(s.T(), err)
	assert.Len(s.T(), bills, 1)
	all, err := s.store.Reminders.ListByBill(s.ctx, b.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 1)
	assert.Equal(s.T(), old.ID, all[0].ID)
}

func (s *StoreTestSuite) TestListRemindersByStatusOrderedNewestFirst() {
	b := s.newBill("u1", "Rent", date(2025, 1, 10), "100")
	first := pending(b.ID, "u1", date(2025, 1, 3))
	second := pending(b.ID, "u1", date(2025, 1, 7))
	failed := pending(b.ID, "u1", date(2025, 1, 1))
	failed.Status = models.ReminderFailed
	require.NoError(s.T(), s.store.Reminders.CreateMany(s.ctx, []models.Reminder{first, second, failed}))

	got, total, err := s.store.Reminders.List(s.ctx, models.ReminderFilter{UserID: "u1", Status: "pending"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, total)
	require.Len(s.T(), got, 2)
	assert.Equal(s.T(), second.ID, got[0].ID)

	_, total, err = s.store.Reminders.List(s.ctx, models.ReminderFilter{UserID: "u2"})
	require.NoError(s.T(), err)
	assert.Zero(s.T(), total)
}

func (s *StoreTestSuite) TestRescheduleAndDeleteReminderRespectOwner() {
	b := s.newBill("u1", "Rent", date(2025, 1, 10), "100")
	r := pending(b.ID, "u1", date(2025, 1, 7))
	require.NoError(s.T(), s.store.Reminders.CreateMany(s.ctx, []models.Reminder{r}))

	r.UserID = "u2"
	assert.True(s.T(), utils.IsNotFound(s.store.Reminders.Reschedule(s.ctx, &r)))
	assert.True(s.T(), utils.IsNotFound(s.store.Reminders.Delete(s.ctx, "u2", r.ID)))

	r.UserID = "u1"
	r.FireAt = date(2025, 1, 8)
	require.NoError(s.T(), s.store.Reminders.Reschedule(s.ctx, &r))
	stored, err := s.store.Reminders.GetByID(s.ctx, "u1", r.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), stored.FireAt.Equal(date(2025, 1, 8)))

	require.NoError(s.T(), s.store.Reminders.Delete(s.ctx, "u1", r.ID))
}

func (s *StoreTestSuite) TestPreferencesUpsert() {
	got, err := s.store.Preferences.Get(s.ctx, "u1")
	require.NoError(s.T(), err)
	assert.Nil(s.T(), got)

	pref := models.DefaultPreference("u1")
	pref.WhatsAppEnabled = true
	pref.ReminderDays = "5,1"
	require.NoError(s.T(), s.store.Preferences.Upsert(s.ctx, &pref))

	pref.SMSEnabled = true
	require.NoError(s.T(), s.store.Preferences.Upsert(s.ctx, &pref))

	got, err = s.store.Preferences.Get(s.ctx, "u1")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), got)
	assert.True(s.T(), got.WhatsAppEnabled)
	assert.True(s.T(), got.SMSEnabled)
	assert.True(s.T(), got.PushEnabled)
	assert.Equal(s.T(), "5,1", got.ReminderDays)
}

func (s *StoreTestSuite) TestUsersAndFCMToken() {
	err := s.store.Users.UpdateFCMToken(s.ctx, "ghost", "tok")
	assert.True(s.T(), utils.IsNotFound(err))

	require.NoError(s.T(), s.store.Users.Upsert(s.ctx, &models.User{ID: "u1", Phone: "9876543210"}))
	require.NoError(s.T(), s.store.Users.UpdateFCMToken(s.ctx, "u1", "tok"))

	u, err := s.store.Users.GetByID(s.ctx, "u1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "9876543210", u.Phone)
	assert.Equal(s.T(), "tok", u.FCMToken)
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}
