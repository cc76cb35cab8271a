package reminder

import (
	"strconv"
	"strings"
	"time"
)

// DefaultDays are the offsets used when a user has no valid preference.
var DefaultDays = []int{7, 3, 0}

// Schedule fixes when reminders fire: at FireHour o'clock local time in
// Location on each reminder date.
type Schedule struct {
	Location    *time.Location
	FireHour    int
	DefaultDays []int
}

// IST is India Standard Time without depending on the zone database.
var IST = time.FixedZone("IST", 5*3600+30*60)

func DefaultSchedule() Schedule {
	return Schedule{Location: IST, FireHour: 9, DefaultDays: DefaultDays}
}

// FireTime returns the UTC instant of FireHour:00 local time on day.
func (s Schedule) FireTime(day time.Time) time.Time {
	loc := s.Location
	if loc == nil {
		loc = IST
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, s.FireHour, 0, 0, 0, loc).UTC()
}

func (s Schedule) defaults() []int {
	if len(s.DefaultDays) == 0 {
		return DefaultDays
	}
	return s.DefaultDays
}

// ParseDays reads a comma-separated offset list. Entries that are not
// non-negative integers are dropped and duplicates keep their first
// position. An empty result yields a copy of fallback.
func ParseDays(raw string, fallback []int) []int {
	seen := make(map[int]bool)
	var days []int
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || seen[n] {
			continue
		}
		seen[n] = true
		days = append(days, n)
	}
	if len(days) == 0 {
		return append([]int(nil), fallback...)
	}
	return days
}
