package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillStatus is the persisted state of a bill. Overdue is never stored.
type BillStatus string

const (
	BillDue  BillStatus = "due"
	BillPaid BillStatus = "paid"
)

// Frequency is how often a recurring bill repeats.
type Frequency string

const (
	FrequencyMonthly   Frequency = "Monthly"
	FrequencyQuarterly Frequency = "Quarterly"
	FrequencyYearly    Frequency = "Yearly"
	FrequencyOneTime   Frequency = "One-time"
)

var Frequencies = []Frequency{FrequencyMonthly, FrequencyQuarterly, FrequencyYearly, FrequencyOneTime}

const (
	CategoryEMI           = "EMI"
	CategoryUtilities     = "Utilities"
	CategorySubscriptions = "Subscriptions"
	CategoryCreditCard    = "Credit Card"
)

var Categories = []string{CategoryEMI, CategoryUtilities, CategorySubscriptions, CategoryCreditCard}

// Bill is a tracked obligation. DueDate is a calendar date held at 00:00 UTC.
type Bill struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Title       string          `json:"title"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"dueDate"`
	Frequency   Frequency       `json:"frequency"`
	IsRecurring bool            `json:"isRecurring"`
	Status      BillStatus      `json:"status"`
	Notes       string          `json:"notes,omitempty"`
	Institution string          `json:"institution,omitempty"`
	AccountInfo string          `json:"accountInfo,omitempty"`
	Version     int             `json:"-"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Successor returns an unsaved copy of b due on next.
func (b Bill) Successor(next time.Time) Bill {
	return Bill{
		UserID:      b.UserID,
		Title:       b.Title,
		Category:    b.Category,
		Amount:      b.Amount,
		DueDate:     next,
		Frequency:   b.Frequency,
		IsRecurring: b.IsRecurring,
		Status:      BillDue,
		Notes:       b.Notes,
		Institution: b.Institution,
		AccountInfo: b.AccountInfo,
	}
}

// BillPatch carries a partial update. Nil fields are left unchanged.
type BillPatch struct {
	Title       *string
	Category    *string
	Amount      *decimal.Decimal
	DueDate     *time.Time
	Frequency   *Frequency
	IsRecurring *bool
	Notes       *string
	Institution *string
	AccountInfo *string
}

// Apply copies the set fields onto b and reports whether the due date moved.
func (p BillPatch) Apply(b *Bill) (dueDateChanged bool) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.Amount != nil {
		b.Amount = *p.Amount
	}
	if p.DueDate != nil {
		dueDateChanged = !b.DueDate.Equal(*p.DueDate)
		b.DueDate = *p.DueDate
	}
	if p.Frequency != nil {
		b.Frequency = *p.Frequency
	}
	if p.IsRecurring != nil {
		b.IsRecurring = *p.IsRecurring
	}
	if p.Notes != nil {
		b.Notes = *p.Notes
	}
	if p.Institution != nil {
		b.Institution = *p.Institution
	}
	if p.AccountInfo != nil {
		b.AccountInfo = *p.AccountInfo
	}
	return dueDateChanged
}

// BillFilter selects bills for list queries.
type BillFilter struct {
	UserID   string
	Status   string // due, paid or overdue
	Category string
	Sort     string // dueDate, amount or title
	Desc     bool
	Today    time.Time
	Page     Page
}

// BillResponse is the read shape of a bill with its derived fields.
type BillResponse struct {
	ID               string          `json:"id"`
	UserID           string          `json:"userId"`
	Title            string          `json:"title"`
	Category         string          `json:"category"`
	Amount           decimal.Decimal `json:"amount"`
	DueDate          string          `json:"dueDate"`
	Frequency        Frequency       `json:"frequency"`
	IsRecurring      bool            `json:"isRecurring"`
	Status           BillStatus      `json:"status"`
	ComputedStatus   ComputedStatus  `json:"computedStatus"`
	Notes            string          `json:"notes,omitempty"`
	Institution      string          `json:"institution,omitempty"`
	AccountInfo      string          `json:"accountInfo,omitempty"`
	OverdueDays      int             `json:"overdueDays"`
	IsDueWithin7Days bool            `json:"isDueWithin7Days"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// MarkPaidResponse is returned by the mark-paid operation.
type MarkPaidResponse struct {
	Bill     BillResponse  `json:"bill"`
	NextBill *BillResponse `json:"nextBill"`
}
