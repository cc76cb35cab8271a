package models

import "github.com/shopspring/decimal"

type DashboardSummary struct {
	TotalDueAmount     decimal.Decimal `json:"totalDueAmount"`
	TotalOverdueAmount decimal.Decimal `json:"totalOverdueAmount"`
	TotalPaidThisMonth decimal.Decimal `json:"totalPaidThisMonth"`
	BillsDueNext7Days  int             `json:"billsDueNext7Days"`
	BillsOverdue       int             `json:"billsOverdue"`
	TotalBills         int             `json:"totalBills"`
	PaidBills          int             `json:"paidBills"`
	PendingBills       int             `json:"pendingBills"`
}

type OverdueResponse struct {
	Data               []BillResponse  `json:"data"`
	TotalOverdueAmount decimal.Decimal `json:"totalOverdueAmount"`
}

type CategoryBreakdown struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Count      int             `json:"count"`
	Percentage float64         `json:"percentage"`
}

type MonthlySummary struct {
	Month             int                 `json:"month"`
	Year              int                 `json:"year"`
	TotalAmount       decimal.Decimal     `json:"totalAmount"`
	PaidAmount        decimal.Decimal     `json:"paidAmount"`
	PendingAmount     decimal.Decimal     `json:"pendingAmount"`
	PaymentPercentage float64             `json:"paymentPercentage"`
	CategoryBreakdown []CategoryBreakdown `json:"categoryBreakdown"`
}
