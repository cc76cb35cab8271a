package bill

import (
	"time"

	"emireminder/models"
)

// NextDueDate advances due by one period of freq. Unknown frequencies
// advance by a month. Days past the end of the target month clamp to its
// last day, so Jan 31 becomes Feb 28 and Feb 29 becomes Feb 28 next year.
func NextDueDate(due time.Time, freq models.Frequency) time.Time {
	switch freq {
	case models.FrequencyQuarterly:
		return addMonths(due, 3)
	case models.FrequencyYearly:
		return addMonths(due, 12)
	default:
		return addMonths(due, 1)
	}
}

// Recurs reports whether paying b creates a successor.
func Recurs(b models.Bill) bool {
	return b.IsRecurring && b.Frequency != models.FrequencyOneTime
}

func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}
