package models

import "time"

// ComputedStatus is the effective state of a bill at read time.
type ComputedStatus string

const (
	ComputedDue     ComputedStatus = "due"
	ComputedOverdue ComputedStatus = "overdue"
	ComputedPaid    ComputedStatus = "paid"
)

const DateLayout = "2006-01-02"

// ComputeStatus derives the effective status from the stored status, the
// due date and today's date. Both dates are compared as calendar days.
func ComputeStatus(stored BillStatus, dueDate, today time.Time) ComputedStatus {
	if stored == BillPaid {
		return ComputedPaid
	}
	if DaysBetween(today, dueDate) < 0 {
		return ComputedOverdue
	}
	return ComputedDue
}

// ToResponse renders b with every derived field computed against today.
func ToResponse(b Bill, today time.Time) BillResponse {
	status := ComputeStatus(b.Status, b.DueDate, today)
	untilDue := DaysBetween(today, b.DueDate)

	resp := BillResponse{
		ID:             b.ID,
		UserID:         b.UserID,
		Title:          b.Title,
		Category:       b.Category,
		Amount:         b.Amount,
		DueDate:        b.DueDate.Format(DateLayout),
		Frequency:      b.Frequency,
		IsRecurring:    b.IsRecurring,
		Status:         b.Status,
		ComputedStatus: status,
		Notes:          b.Notes,
		Institution:    b.Institution,
		AccountInfo:    b.AccountInfo,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
	switch status {
	case ComputedOverdue:
		resp.OverdueDays = -untilDue
	case ComputedDue:
		resp.IsDueWithin7Days = untilDue >= 0 && untilDue <= 7
	}
	return resp
}

// ToResponses maps ToResponse over bills.
func ToResponses(bills []Bill, today time.Time) []BillResponse {
	out := make([]BillResponse, 0, len(bills))
	for _, b := range bills {
		out = append(out, ToResponse(b, today))
	}
	return out
}

// CivilDate returns the calendar date of t in loc, held at 00:00 UTC.
func CivilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and keeps the date part.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
