package bill

import (
	"context"

	"emireminder/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBill stores a new due bill and plans its reminders. When planning
// fails the bill is removed again.
func (s *DefaultBillService) CreateBill(ctx context.Context, bill models.Bill) (*models.BillResponse, error) {
	today := s.Clock.Today()
	if err := ValidateNew(&bill, today); err != nil {
		return nil, err
	}
	bill.ID = ""
	bill.Status = models.BillDue

	if err := s.Repo.Create(ctx, &bill); err != nil {
		s.logger().Error("Failed to create bill", zap.String("userId", bill.UserID), zap.Error(err))
		return nil, err
	}
	if _, err := s.Planner.Generate(ctx, bill); err != nil {
		if delErr := s.Repo.Delete(ctx, bill.UserID, bill.ID); delErr != nil {
			s.logger().Error("Failed to roll back bill", zap.String("billId", bill.ID), zap.Error(delErr))
		}
		return nil, err
	}

	s.logger().Info("Bill created", zap.String("billId", bill.ID), zap.String("userId", bill.UserID))
	resp := models.ToResponse(bill, today)
	return &resp, nil
}

func (s *DefaultBillService) GetBill(ctx context.Context, userID, id string) (*models.BillResponse, error) {
	bill, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := models.ToResponse(*bill, s.Clock.Today())
	return &resp, nil
}

func (s *DefaultBillService) ListBills(ctx context.Context, filter models.BillFilter) (*models.PagedResponse[models.BillResponse], error) {
	today := s.Clock.Today()
	filter.Today = today
	filter.Page = filter.Page.Normalize()

	bills, total, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &models.PagedResponse[models.BillResponse]{
		Success:    true,
		Data:       models.ToResponses(bills, today),
		Pagination: models.NewPaginationMeta(filter.Page, total),
	}, nil
}

// UpdateBill applies patch. Moving the due date of an unpaid bill replaces
// its pending reminders in the same write.
func (s *DefaultBillService) UpdateBill(ctx context.Context, userID, id string, patch models.BillPatch) (*models.BillResponse, error) {
	if err := ValidatePatch(&patch); err != nil {
		return nil, err
	}
	bill, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	moved := patch.Apply(bill)
	if moved && bill.Status != models.BillPaid {
		fresh, err := s.Planner.PlanFor(ctx, *bill)
		if err != nil {
			return nil, err
		}
		if err := s.Repo.UpdateWithReminders(ctx, bill, fresh); err != nil {
			s.logger().Error("Failed to update bill", zap.String("billId", bill.ID), zap.Error(err))
			return nil, err
		}
	} else if err := s.Repo.Update(ctx, bill); err != nil {
		return nil, err
	}

	s.logger().Info("Bill updated", zap.String("billId", bill.ID), zap.Bool("dueDateChanged", moved))
	resp := models.ToResponse(*bill, s.Clock.Today())
	return &resp, nil
}

// MarkPaid settles a bill. Paying an already paid bill changes nothing.
// A recurring bill gets a successor one period later. The paid flag, the
// cancelled reminders and the successor are stored together, so a failed
// call leaves the bill unpaid and can be retried.
func (s *DefaultBillService) MarkPaid(ctx context.Context, userID, id string) (*models.MarkPaidResponse, error) {
	today := s.Clock.Today()
	bill, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if bill.Status == models.BillPaid {
		return &models.MarkPaidResponse{Bill: models.ToResponse(*bill, today)}, nil
	}

	var next *models.Bill
	var nextReminders []models.Reminder
	if Recurs(*bill) {
		successor := bill.Successor(NextDueDate(bill.DueDate, bill.Frequency))
		successor.ID = uuid.NewString()
		if nextReminders, err = s.Planner.PlanFor(ctx, successor); err != nil {
			return nil, err
		}
		next = &successor
	}

	bill.Status = models.BillPaid
	if err := s.Repo.Settle(ctx, bill, next, nextReminders); err != nil {
		s.logger().Error("Failed to settle bill", zap.String("billId", bill.ID), zap.Error(err))
		return nil, err
	}

	out := &models.MarkPaidResponse{Bill: models.ToResponse(*bill, today)}
	if next == nil {
		s.logger().Info("Bill paid", zap.String("billId", bill.ID))
		return out, nil
	}
	s.logger().Info("Bill paid",
		zap.String("billId", bill.ID),
		zap.String("nextBillId", next.ID),
		zap.String("nextDueDate", next.DueDate.Format(models.DateLayout)))
	nextResp := models.ToResponse(*next, today)
	out.NextBill = &nextResp
	return out, nil
}

// MarkUnpaid reopens a paid bill and regenerates its reminders. Bills that
// are not paid are returned unchanged.
func (s *DefaultBillService) MarkUnpaid(ctx context.Context, userID, id string) (*models.BillResponse, error) {
	today := s.Clock.Today()
	bill, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if bill.Status != models.BillPaid {
		resp := models.ToResponse(*bill, today)
		return &resp, nil
	}

	bill.Status = models.BillDue
	fresh, err := s.Planner.PlanFor(ctx, *bill)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateWithReminders(ctx, bill, fresh); err != nil {
		return nil, err
	}

	s.logger().Info("Bill marked unpaid", zap.String("billId", bill.ID))
	resp := models.ToResponse(*bill, today)
	return &resp, nil
}

// DeleteBill removes the bill together with its reminders.
func (s *DefaultBillService) DeleteBill(ctx context.Context, userID, id string) error {
	if err := s.Repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.logger().Info("Bill deleted", zap.String("billId", id))
	return nil
}
