// Package message renders reminder texts. Everything here is pure: the same
// bill, offset and channel always produce the same bytes.
package message

import (
	"fmt"

	"emireminder/models"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	textmsg "golang.org/x/text/message"
)

// PushTitle is the notification title shown above push messages.
const PushTitle = "EMI Reminder"

// facts are the values every channel renders.
type facts struct {
	Title   string
	Amount  string
	DueDate string
	Days    string
}

type renderer func(f facts) string

var renderers = map[models.Channel]renderer{
	models.ChannelWhatsApp: func(f facts) string {
		return fmt.Sprintf("🔔 *EMI Reminder*\nHi! Your *%s* payment of *₹%s* is due %s (%s).\n\nPay on time to avoid penalties! 💰",
			f.Title, f.Amount, f.Days, f.DueDate)
	},
	models.ChannelSMS: func(f facts) string {
		return fmt.Sprintf("EMI Reminder: %s - Rs.%s due %s (%s). -EmiReminder",
			f.Title, f.Amount, f.Days, f.DueDate)
	},
	models.ChannelPush: func(f facts) string {
		return fmt.Sprintf("Your %s payment of ₹%s is due %s (%s).",
			f.Title, f.Amount, f.Days, f.DueDate)
	},
}

// Render composes the reminder text for bill, daysBefore days ahead of its
// due date, on channel. Unknown channels render as push.
func Render(bill models.Bill, daysBefore int, channel models.Channel) string {
	f := facts{
		Title:   bill.Title,
		Amount:  FormatAmount(bill.Amount),
		DueDate: bill.DueDate.Format("02 Jan 2006"),
		Days:    DaysPhrase(daysBefore),
	}
	render, ok := renderers[channel]
	if !ok {
		render = renderers[models.ChannelPush]
	}
	return render(f)
}

// Preview renders the message a reminder sent today would carry.
func Preview(bill models.Bill, daysUntilDue int, channel models.Channel) string {
	if daysUntilDue < 0 {
		daysUntilDue = 0
	}
	return Render(bill, daysUntilDue, channel)
}

// DaysPhrase turns an offset into "today", "in 1 day" or "in N days".
func DaysPhrase(days int) string {
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "in 1 day"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}

// FormatAmount rounds the amount to whole rupees with thousands separators.
func FormatAmount(amount decimal.Decimal) string {
	p := textmsg.NewPrinter(language.English)
	return p.Sprintf("%d", amount.Round(0).IntPart())
}
