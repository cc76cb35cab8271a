package models

import "time"

// ReminderStatus is the delivery state of a reminder.
type ReminderStatus string

const (
	ReminderPending ReminderStatus = "pending"
	ReminderSent    ReminderStatus = "sent"
	ReminderFailed  ReminderStatus = "failed"
)

// Reminder is one scheduled notification for a bill. Message and Channel are
// fixed when the reminder is created.
type Reminder struct {
	ID          string         `json:"id"`
	BillID      string         `json:"billId"`
	UserID      string         `json:"userId"`
	FireAt      time.Time      `json:"reminderDate"`
	DaysBefore  int            `json:"daysBefore"`
	Message     string         `json:"message"`
	Channel     Channel        `json:"channel"`
	Status      ReminderStatus `json:"status"`
	SentAt      *time.Time     `json:"sentAt,omitempty"`
	DeliveryKey string         `json:"-"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// ReminderFilter selects reminders for list queries.
type ReminderFilter struct {
	UserID string
	Status string
	BillID string
	// OrderBySentAt sorts by sentAt instead of fire time, newest first.
	OrderBySentAt bool
	Page          Page
}

// ReminderResponse is the read shape of a reminder.
type ReminderResponse struct {
	Reminder
	Bill *BillResponse `json:"bill,omitempty"`
}

// ReminderPayload is the asynq payload for a queued sweep.
type ReminderPayload struct {
	TriggeredAt string `json:"triggeredAt"`
	Source      string `json:"source"`
}
