package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeStatus(t *testing.T) {
	today := date(2025, 1, 10)
	tests := []struct {
		name   string
		stored BillStatus
		due    time.Time
		want   ComputedStatus
	}{
		{"paid in the past", BillPaid, date(2024, 12, 1), ComputedPaid},
		{"paid in the future", BillPaid, date(2025, 3, 1), ComputedPaid},
		{"due today", BillDue, today, ComputedDue},
		{"due tomorrow", BillDue, date(2025, 1, 11), ComputedDue},
		{"due yesterday", BillDue, date(2025, 1, 9), ComputedOverdue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStatus(tt.stored, tt.due, today))
		})
	}
}

func TestToResponse(t *testing.T) {
	today := date(2025, 1, 10)
	b := Bill{ID: "b1", Amount: decimal.RequireFromString("1000.50"), DueDate: date(2025, 1, 3), Status: BillDue}

	resp := ToResponse(b, today)
	assert.Equal(t, ComputedOverdue, resp.ComputedStatus)
	assert.Equal(t, 7, resp.OverdueDays)
	assert.Equal(t, "2025-01-03", resp.DueDate)
	assert.False(t, resp.IsDueWithin7Days)

	b.DueDate = date(2025, 1, 17)
	resp = ToResponse(b, today)
	assert.Equal(t, ComputedDue, resp.ComputedStatus)
	assert.True(t, resp.IsDueWithin7Days)
	assert.Zero(t, resp.OverdueDays)
}

func TestCivilDate(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+30*60)
	// 20:00 UTC on Jan 1 is already Jan 2 in IST.
	got := CivilDate(time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC), ist)
	assert.Equal(t, date(2025, 1, 2), got)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-02-10")
	require.NoError(t, err)
	assert.Equal(t, date(2025, 2, 10), d)

	d, err = ParseDate("2025-02-10T18:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, date(2025, 2, 10), d)

	_, err = ParseDate("10/02/2025")
	assert.Error(t, err)
}

func TestParseChannel(t *testing.T) {
	c, err := ParseChannel(" WhatsApp ")
	require.NoError(t, err)
	assert.Equal(t, ChannelWhatsApp, c)

	_, err = ParseChannel("email")
	assert.Error(t, err)
	for _, c := range Channels {
		assert.True(t, c.Valid())
	}
}

func TestPageNormalize(t *testing.T) {
	p := Page{Number: 0, Size: 500}.Normalize()
	assert.Equal(t, Page{Number: 1, Size: MaxPageSize}, p)
	assert.Equal(t, 0, p.Offset())

	meta := NewPaginationMeta(Page{Number: 2, Size: 20}, 41)
	assert.Equal(t, 3, meta.TotalPages)
}
