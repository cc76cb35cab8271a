package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	reminderRepo "emireminder/database/repository/reminder"
	"emireminder/database/sqlite"
	"emireminder/models"
	"emireminder/services/notification"
	"emireminder/utils"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

var sweepNow = time.Date(2025, 1, 10, 4, 0, 0, 0, time.UTC)

type recorder struct {
	mu    sync.Mutex
	sent  []notification.Delivery
	fail  map[string]error
	panic map[string]bool
	block map[string]bool
}

func newRecorder() *recorder {
	return &recorder{fail: map[string]error{}, panic: map[string]bool{}, block: map[string]bool{}}
}

func (r *recorder) Send(ctx context.Context, d notification.Delivery) error {
	if r.panic[d.ReminderID] {
		panic("boom")
	}
	if r.block[d.ReminderID] {
		<-ctx.Done()
		return ctx.Err()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail[d.ReminderID]; err != nil {
		return err
	}
	r.sent = append(r.sent, d)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

type failingOutcomes struct {
	reminderRepo.ReminderRepository
}

func (failingOutcomes) SaveOutcomes(context.Context, []models.Reminder) error {
	return errors.New("disk full")
}

type DispatcherTestSuite struct {
	suite.Suite
	ctx      context.Context
	store    *sqlite.Store
	push     *recorder
	sms      *recorder
	whatsApp *recorder
	metrics  *Metrics
	d        *Dispatcher
	billID   string
}

func (s *DispatcherTestSuite) SetupTest() {
	store, err := sqlite.Open(":memory:")
	require.NoError(s.T(), err)
	s.store = store
	s.ctx = context.Background()
	s.push, s.sms, s.whatsApp = newRecorder(), newRecorder(), newRecorder()
	s.metrics = NewMetrics(prometheus.NewRegistry())

	require.NoError(s.T(), store.Users.Upsert(s.ctx, &models.User{ID: "u1", Phone: "9876543210", FCMToken: "tok"}))
	bill := models.Bill{
		UserID: "u1", Title: "Car EMI", Category: models.CategoryEMI, Amount: decimal.NewFromInt(1000),
		DueDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), Frequency: models.FrequencyMonthly,
		IsRecurring: true, Status: models.BillDue,
	}
	require.NoError(s.T(), store.Bills.Create(s.ctx, &bill))
	s.billID = bill.ID

	s.d = &Dispatcher{
		Reminders:  store.Reminders,
		Users:      store.Users,
		Transports: notification.Transports{Push: s.push, SMS: s.sms, WhatsApp: s.whatsApp},
		Guard:      notification.NewMemoryDeliveryGuard(time.Hour),
		Lease:      &LocalLease{},
		Metrics:    s.metrics,
		Clock:      utils.FixedClock(sweepNow, time.UTC),
		Timeout:    50 * time.Millisecond,
		Logger:     zaptest.NewLogger(s.T()),
	}
}

func (s *DispatcherTestSuite) TearDownTest() {
	s.store.Close()
}

func (s *DispatcherTestSuite) addReminder(channel models.Channel, fireAt time.Time) models.Reminder {
	r := models.Reminder{
		ID:          uuid.NewString(),
		BillID:      s.billID,
		UserID:      "u1",
		FireAt:      fireAt,
		Message:     "pay " + string(channel),
		Channel:     channel,
		Status:      models.ReminderPending,
		DeliveryKey: uuid.NewString(),
		CreatedAt:   sweepNow.Add(-48 * time.Hour),
	}
	require.NoError(s.T(), s.store.Reminders.CreateMany(s.ctx, []models.Reminder{r}))
	return r
}

func (s *DispatcherTestSuite) stored(id string) *models.Reminder {
	r, err := s.store.Reminders.GetByID(s.ctx, "u1", id)
	require.NoError(s.T(), err)
	return r
}

func (s *DispatcherTestSuite) TestSweepDeliversDueReminders() {
	push := s.addReminder(models.ChannelPush, sweepNow.Add(-time.Hour))
	sms := s.addReminder(models.ChannelSMS, sweepNow)
	later := s.addReminder(models.ChannelWhatsApp, sweepNow.Add(time.Minute))

	res := s.d.Sweep(s.ctx)
	assert.Equal(s.T(), SweepResult{Due: 2, Sent: 2, Persisted: true}, res)

	require.Equal(s.T(), 1, s.push.count())
	assert.Equal(s.T(), "tok", s.push.sent[0].FCMToken)
	assert.Equal(s.T(), "pay push", s.push.sent[0].Text)
	require.Equal(s.T(), 1, s.sms.count())
	assert.Equal(s.T(), "9876543210", s.sms.sent[0].Phone)
	assert.Equal(s.T(), sms.DeliveryKey, s.sms.sent[0].Key)
	assert.Zero(s.T(), s.whatsApp.count())

	for _, id := range []string{push.ID, sms.ID} {
		r := s.stored(id)
		assert.Equal(s.T(), models.ReminderSent, r.Status)
		require.NotNil(s.T(), r.SentAt)
		assert.True(s.T(), r.SentAt.Equal(sweepNow))
	}
	assert.Equal(s.T(), models.ReminderPending, s.stored(later.ID).Status)

	assert.Equal(s.T(), 1.0, testutil.ToFloat64(s.metrics.sweeps))
	assert.Equal(s.T(), 1.0, testutil.ToFloat64(s.metrics.dispatched.WithLabelValues("sms", "sent")))

	again := s.d.Sweep(s.ctx)
	assert.Equal(s.T(), 0, again.Due)
	assert.Equal(s.T(), 1, s.push.count())
}

func (s *DispatcherTestSuite) TestOneFailureDoesNotAbortOthers() {
	failing := s.addReminder(models.ChannelSMS, sweepNow.Add(-3*time.Hour))
	panicking := s.addReminder(models.ChannelWhatsApp, sweepNow.Add(-2*time.Hour))
	slow := s.addReminder(models.ChannelSMS, sweepNow.Add(-90*time.Minute))
	ok := s.addReminder(models.ChannelPush, sweepNow.Add(-time.Hour))

	s.sms.fail[failing.ID] = utils.TransportFailure("sms send failed", errors.New("21211"))
	s.whatsApp.panic[panicking.ID] = true
	s.sms.block[slow.ID] = true

	res := s.d.Sweep(s.ctx)
	assert.Equal(s.T(), 4, res.Due)
	assert.Equal(s.T(), 1, res.Sent)
	assert.Equal(s.T(), 3, res.Failed)
	assert.True(s.T(), res.Persisted)

	for _, id := range []string{failing.ID, panicking.ID, slow.ID} {
		r := s.stored(id)
		assert.Equal(s.T(), models.ReminderFailed, r.Status)
		assert.Nil(s.T(), r.SentAt)
	}
	assert.Equal(s.T(), models.ReminderSent, s.stored(ok.ID).Status)

	delete(s.sms.fail, failing.ID)
	again := s.d.Sweep(s.ctx)
	assert.Equal(s.T(), 0, again.Due, "failed is terminal")
	assert.Equal(s.T(), 0, s.sms.count())
}

func (s *DispatcherTestSuite) TestPersistFailureLeavesRemindersPending() {
	r := s.addReminder(models.ChannelSMS, sweepNow.Add(-time.Hour))
	inner := s.d.Reminders
	s.d.Reminders = failingOutcomes{ReminderRepository: inner}

	res := s.d.Sweep(s.ctx)
	assert.Equal(s.T(), 1, res.Sent)
	assert.False(s.T(), res.Persisted)
	assert.Equal(s.T(), models.ReminderPending, s.stored(r.ID).Status)
	assert.Equal(s.T(), 1.0, testutil.ToFloat64(s.metrics.persistFailures))

	// The retry finds the claimed delivery key and records it as sent
	// without a second send.
	s.d.Reminders = inner
	res = s.d.Sweep(s.ctx)
	assert.Equal(s.T(), SweepResult{Due: 1, Sent: 1, Skipped: 1, Persisted: true}, res)
	assert.Equal(s.T(), 1, s.sms.count())
	assert.Equal(s.T(), models.ReminderSent, s.stored(r.ID).Status)
}

func (s *DispatcherTestSuite) TestRetryWithoutGuardSendsAgain() {
	s.addReminder(models.ChannelSMS, sweepNow.Add(-time.Hour))
	s.d.Guard = nil
	inner := s.d.Reminders
	s.d.Reminders = failingOutcomes{ReminderRepository: inner}
	s.d.Sweep(s.ctx)

	s.d.Reminders = inner
	s.d.Sweep(s.ctx)
	assert.Equal(s.T(), 2, s.sms.count())
}

func (s *DispatcherTestSuite) TestSweepsAreSerialized() {
	s.addReminder(models.ChannelPush, sweepNow.Add(-time.Hour))

	release, ok, err := s.d.Lease.Acquire(s.ctx)
	require.NoError(s.T(), err)
	require.True(s.T(), ok)

	res := s.d.Sweep(s.ctx)
	assert.True(s.T(), res.Busy)
	assert.Zero(s.T(), s.push.count())

	release()
	res = s.d.Sweep(s.ctx)
	assert.False(s.T(), res.Busy)
	assert.Equal(s.T(), 1, s.push.count())
}

func (s *DispatcherTestSuite) TestUnknownUserStillGetsPush() {
	r := models.Reminder{
		ID: uuid.NewString(), BillID: s.billID, UserID: "u1", FireAt: sweepNow.Add(-time.Hour),
		Message: "m", Channel: models.ChannelPush, Status: models.ReminderPending, DeliveryKey: uuid.NewString(),
	}
	require.NoError(s.T(), s.store.Reminders.CreateMany(s.ctx, []models.Reminder{r}))
	s.d.Users = nil
	s.d.Transports.Push = notification.NewPushTransport(nil, zaptest.NewLogger(s.T()))

	res := s.d.Sweep(s.ctx)
	assert.Equal(s.T(), 1, res.Sent)
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherTestSuite))
}

func TestLocalLease(t *testing.T) {
	var l LocalLease
	release, ok, err := l.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, _ = l.Acquire(context.Background())
	assert.False(t, ok)

	release()
	_, ok, _ = l.Acquire(context.Background())
	assert.True(t, ok)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observeSweep(time.Now())
		m.dispatchedOne(models.ChannelSMS, models.ReminderSent)
		m.persistFailed()
	})
}

func TestNewSweeperRejectsBadInterval(t *testing.T) {
	_, err := NewSweeper(&Dispatcher{}, 0, zaptest.NewLogger(t))
	assert.Error(t, err)

	s, err := NewSweeper(&Dispatcher{}, time.Minute, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 1)
}

func TestSweepTaskPayload(t *testing.T) {
	task, err := NewSweepTask("admin")
	require.NoError(t, err)
	assert.Equal(t, TypeReminderSweep, task.Type())
	assert.Contains(t, string(task.Payload()), `"source":"admin"`)
}
