package reminder

import (
	"context"
	"time"

	"emireminder/models"
	"emireminder/services/message"
	"emireminder/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PreferredChannel picks whatsapp, then sms, then push.
func PreferredChannel(pref *models.UserPreference) models.Channel {
	switch {
	case pref == nil:
		return models.ChannelPush
	case pref.WhatsAppEnabled:
		return models.ChannelWhatsApp
	case pref.SMSEnabled:
		return models.ChannelSMS
	default:
		return models.ChannelPush
	}
}

// Plan computes the pending reminders of bill. No reminder is dated before
// today. now stamps CreatedAt.
func Plan(bill models.Bill, pref *models.UserPreference, sched Schedule, today, now time.Time) []models.Reminder {
	raw := ""
	if pref != nil {
		raw = pref.ReminderDays
	}
	days := ParseDays(raw, sched.defaults())
	channel := PreferredChannel(pref)

	reminders := make([]models.Reminder, 0, len(days))
	for _, d := range days {
		day := bill.DueDate.AddDate(0, 0, -d)
		if models.DaysBetween(today, day) < 0 {
			continue
		}
		reminders = append(reminders, models.Reminder{
			ID:          uuid.NewString(),
			BillID:      bill.ID,
			UserID:      bill.UserID,
			FireAt:      sched.FireTime(day),
			DaysBefore:  d,
			Message:     message.Render(bill, d, channel),
			Channel:     channel,
			Status:      models.ReminderPending,
			DeliveryKey: uuid.NewString(),
			CreatedAt:   now,
		})
	}
	return reminders
}

// PlanFor computes the reminders of bill under its owner's preferences
// without storing them.
func (s *DefaultReminderService) PlanFor(ctx context.Context, bill models.Bill) ([]models.Reminder, error) {
	pref, err := s.Preferences.Get(ctx, bill.UserID)
	if err != nil {
		return nil, err
	}
	return Plan(bill, pref, s.Schedule, s.Clock.Today(), s.Clock.Now().Truncate(time.Millisecond)), nil
}

// Generate plans and stores the initial reminders of a bill.
func (s *DefaultReminderService) Generate(ctx context.Context, bill models.Bill) ([]models.Reminder, error) {
	reminders, err := s.PlanFor(ctx, bill)
	if err != nil {
		return nil, err
	}
	if err := s.Reminders.CreateMany(ctx, reminders); err != nil {
		s.logger().Error("Failed to store reminders", zap.String("billId", bill.ID), zap.Error(err))
		return nil, err
	}
	s.logger().Debug("Reminders generated", zap.String("billId", bill.ID), zap.Int("count", len(reminders)))
	return reminders, nil
}

// CancelPending drops the pending reminders of a bill. History stays.
func (s *DefaultReminderService) CancelPending(ctx context.Context, billID string) error {
	n, err := s.Reminders.DeletePending(ctx, billID)
	if err != nil {
		s.logger().Error("Failed to cancel reminders", zap.String("billId", billID), zap.Error(err))
		return err
	}
	s.logger().Debug("Pending reminders cancelled", zap.String("billId", billID), zap.Int64("count", n))
	return nil
}

// Reschedule replaces the pending reminders of a bill in one step.
func (s *DefaultReminderService) Reschedule(ctx context.Context, bill models.Bill) ([]models.Reminder, error) {
	reminders, err := s.PlanFor(ctx, bill)
	if err != nil {
		return nil, err
	}
	if err := s.Reminders.ReplacePending(ctx, bill.ID, reminders); err != nil {
		s.logger().Error("Failed to regenerate reminders", zap.String("billId", bill.ID), zap.Error(err))
		return nil, err
	}
	s.logger().Debug("Reminders regenerated", zap.String("billId", bill.ID), zap.Int("count", len(reminders)))
	return reminders, nil
}

// RescheduleOne moves one reminder to newDate and makes it pending again.
func (s *DefaultReminderService) RescheduleOne(ctx context.Context, userID, reminderID string, newDate time.Time) (*models.ReminderResponse, error) {
	if !newDate.After(s.Clock.Now()) {
		return nil, utils.InvalidInput("reminder date must be in the future")
	}
	r, err := s.Reminders.GetByID(ctx, userID, reminderID)
	if err != nil {
		return nil, err
	}

	r.FireAt = newDate.UTC()
	r.Status = models.ReminderPending
	r.SentAt = nil
	r.DeliveryKey = uuid.NewString()
	if err := s.Reminders.Reschedule(ctx, r); err != nil {
		return nil, err
	}
	s.logger().Info("Reminder rescheduled", zap.String("reminderId", r.ID), zap.Time("fireAt", r.FireAt))

	resp := s.withBills(ctx, []models.Reminder{*r})
	return &resp[0], nil
}

// DeleteReminder removes a reminder owned by userID.
func (s *DefaultReminderService) DeleteReminder(ctx context.Context, userID, reminderID string) error {
	return s.Reminders.Delete(ctx, userID, reminderID)
}
