package reminder

import (
	"context"

	"emireminder/models"
	"emireminder/services/message"

	"go.uber.org/zap"
)

// ListReminders returns a page of the caller's reminders with their bills.
func (s *DefaultReminderService) ListReminders(ctx context.Context, filter models.ReminderFilter) (*models.PagedResponse[models.ReminderResponse], error) {
	filter.Page = filter.Page.Normalize()
	reminders, total, err := s.Reminders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &models.PagedResponse[models.ReminderResponse]{
		Success:    true,
		Data:       s.withBills(ctx, reminders),
		Pagination: models.NewPaginationMeta(filter.Page, total),
	}, nil
}

// History lists delivered reminders, most recently sent first.
func (s *DefaultReminderService) History(ctx context.Context, userID string, page models.Page) (*models.PagedResponse[models.ReminderResponse], error) {
	return s.ListReminders(ctx, models.ReminderFilter{
		UserID:        userID,
		Status:        string(models.ReminderSent),
		OrderBySentAt: true,
		Page:          page,
	})
}

// PreviewTest renders what a reminder for the bill would say on channel today.
func (s *DefaultReminderService) PreviewTest(ctx context.Context, userID, billID string, channel models.Channel) (string, error) {
	bill, err := s.Bills.GetByID(ctx, userID, billID)
	if err != nil {
		return "", err
	}
	days := models.DaysBetween(s.Clock.Today(), bill.DueDate)
	return message.Preview(*bill, days, channel), nil
}

func (s *DefaultReminderService) withBills(ctx context.Context, reminders []models.Reminder) []models.ReminderResponse {
	today := s.Clock.Today()
	bills := make(map[string]*models.BillResponse)
	out := make([]models.ReminderResponse, 0, len(reminders))
	for _, r := range reminders {
		resp, cached := bills[r.BillID]
		if !cached && s.Bills != nil {
			bill, err := s.Bills.GetByID(ctx, r.UserID, r.BillID)
			if err != nil {
				s.logger().Debug("Bill lookup failed", zap.String("billId", r.BillID), zap.Error(err))
			} else {
				br := models.ToResponse(*bill, today)
				resp = &br
			}
			bills[r.BillID] = resp
		}
		out = append(out, models.ReminderResponse{Reminder: r, Bill: resp})
	}
	return out
}
