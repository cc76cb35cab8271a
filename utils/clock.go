package utils

import (
	"time"

	"emireminder/models"
)

// Clock tells services the current instant and the civil date in the
// reminder timezone.
type Clock struct {
	Location *time.Location
	NowFunc  func() time.Time
}

func NewClock(loc *time.Location) Clock {
	return Clock{Location: loc, NowFunc: time.Now}
}

// FixedClock always reports now. Used by tests and one-off commands.
func FixedClock(now time.Time, loc *time.Location) Clock {
	return Clock{Location: loc, NowFunc: func() time.Time { return now }}
}

func (c Clock) Now() time.Time {
	if c.NowFunc == nil {
		return time.Now().UTC()
	}
	return c.NowFunc().UTC()
}

func (c Clock) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// Today is the calendar date of Now in the clock's location, held at 00:00 UTC.
func (c Clock) Today() time.Time {
	return models.CivilDate(c.Now(), c.loc())
}
