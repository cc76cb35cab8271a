package insight

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"emireminder/models"
	"emireminder/services/message"

	"github.com/shopspring/decimal"
)

const longDate = "02 January 2006"

func statusPhrase(days int) string {
	switch {
	case days > 0:
		return fmt.Sprintf("due in **%d days**", days)
	case days == 0:
		return "**due today**"
	default:
		return fmt.Sprintf("**%d days overdue**", -days)
	}
}

func rupees(d decimal.Decimal) string {
	return "₹" + message.FormatAmount(d)
}

// ExplainBill renders the category-specific notes for b as markdown.
func ExplainBill(b models.Bill, today time.Time) string {
	status := statusPhrase(models.DaysBetween(today, b.DueDate))
	due := b.DueDate.Format(longDate)
	amount := rupees(b.Amount)

	var sb strings.Builder
	switch b.Category {
	case models.CategoryEMI:
		fmt.Fprintf(&sb, "## 🏦 EMI Analysis: %s\n\n", b.Title)
		fmt.Fprintf(&sb, "**Amount:** %s\n**Due Date:** %s (%s)\n**Frequency:** %s\n", amount, due, status, b.Frequency)
		if b.Institution != "" {
			fmt.Fprintf(&sb, "**Institution:** %s\n", b.Institution)
		}
		sb.WriteString("\n### 💡 EMI Tips\n")
		sb.WriteString("- Set up **auto-debit** to avoid missed payments and late fees.\n")
		sb.WriteString("- **Part-prepayment** can significantly reduce your loan tenure.\n")
		sb.WriteString("- Maintain a **buffer of 2-3x your EMI** in your savings account.\n")
		sb.WriteString("- Missing EMI payments impacts your **CIBIL score** negatively.\n")
		sb.WriteString("\n### 📊 Annual Commitment\n")
		fmt.Fprintf(&sb, "- **Monthly:** %s\n", amount)
		fmt.Fprintf(&sb, "- **Quarterly:** %s\n", rupees(b.Amount.Mul(decimal.NewFromInt(3))))
		fmt.Fprintf(&sb, "- **Yearly:** %s\n", rupees(b.Amount.Mul(decimal.NewFromInt(12))))
	case models.CategoryCreditCard:
		fmt.Fprintf(&sb, "## 💳 Credit Card Bill: %s\n\n", b.Title)
		fmt.Fprintf(&sb, "**Amount:** %s\n**Due Date:** %s (%s)\n", amount, due, status)
		sb.WriteString("\n### ⚠️ Important\n")
		sb.WriteString("- Pay the **full amount** to avoid interest charges (36-48% p.a.).\n")
		sb.WriteString("- Minimum payment protects your credit score but incurs heavy interest.\n")
		sb.WriteString("- Keep utilization below **30%** for a healthy credit score.\n")
		sb.WriteString("\n### 💰 Interest Impact (if only minimum paid)\n")
		fmt.Fprintf(&sb, "Assuming 42%% p.a. interest: carrying %s costs about %s/month.\n",
			amount, rupees(b.Amount.Mul(decimal.RequireFromString("0.035"))))
	case models.CategoryUtilities:
		fmt.Fprintf(&sb, "## ⚡ Utility Bill: %s\n\n", b.Title)
		fmt.Fprintf(&sb, "**Amount:** %s\n**Due Date:** %s (%s)\n", amount, due, status)
		sb.WriteString("\n### 💡 Saving Tips\n")
		sb.WriteString("- Pay before the due date to avoid **late payment surcharges**.\n")
		sb.WriteString("- Switch to **online payment** for instant confirmation.\n")
		sb.WriteString("- Track monthly trends to spot unusual spikes in consumption.\n")
	case models.CategorySubscriptions:
		annual := b.Amount
		switch b.Frequency {
		case models.FrequencyMonthly:
			annual = b.Amount.Mul(decimal.NewFromInt(12))
		case models.FrequencyQuarterly:
			annual = b.Amount.Mul(decimal.NewFromInt(4))
		}
		fmt.Fprintf(&sb, "## 📱 Subscription: %s\n\n", b.Title)
		fmt.Fprintf(&sb, "**Amount:** %s\n**Due Date:** %s (%s)\n**Frequency:** %s\n", amount, due, status, b.Frequency)
		sb.WriteString("\n### 📋 Subscription Audit\n")
		fmt.Fprintf(&sb, "- Annual cost: %s\n", rupees(annual))
		sb.WriteString("- Review if you actively use this subscription.\n")
		sb.WriteString("- Annual plans are usually cheaper than monthly ones.\n")
	default:
		fmt.Fprintf(&sb, "## 📌 %s\n\n", b.Title)
		fmt.Fprintf(&sb, "**Amount:** %s\n**Due Date:** %s (%s)\n**Category:** %s\n", amount, due, status, b.Category)
		sb.WriteString("\nPay on time to maintain a good financial record.\n")
	}
	return sb.String()
}

// MonthlyReport renders the month summary for bills due in that month.
func MonthlyReport(bills []models.Bill, month time.Month, year int, today time.Time) string {
	total, paid, pending, overdue := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	var paidCount, pendingCount, overdueCount int
	type group struct {
		amount decimal.Decimal
		count  int
	}
	groups := make(map[string]*group)
	for _, b := range bills {
		total = total.Add(b.Amount)
		switch models.ComputeStatus(b.Status, b.DueDate, today) {
		case models.ComputedPaid:
			paid = paid.Add(b.Amount)
			paidCount++
		case models.ComputedOverdue:
			overdue = overdue.Add(b.Amount)
			overdueCount++
			fallthrough
		default:
			pending = pending.Add(b.Amount)
			pendingCount++
		}
		g, ok := groups[b.Category]
		if !ok {
			g = &group{amount: decimal.Zero}
			groups[b.Category] = g
		}
		g.amount = g.amount.Add(b.Amount)
		g.count++
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## 📊 Monthly Summary: %s %d\n\n", month, year)
	fmt.Fprintf(&sb, "**Total Bills:** %d\n", len(bills))
	fmt.Fprintf(&sb, "**Total Amount:** %s\n", rupees(total))
	fmt.Fprintf(&sb, "**Paid:** %s (%d bills)\n", rupees(paid), paidCount)
	fmt.Fprintf(&sb, "**Pending:** %s (%d bills)\n", rupees(pending), pendingCount)
	if overdueCount > 0 {
		fmt.Fprintf(&sb, "**⚠️ Overdue:** %d bills totalling %s\n", overdueCount, rupees(overdue))
	}

	sb.WriteString("\n### 📁 Category Breakdown\n")
	if len(groups) == 0 {
		sb.WriteString("No bills this month.\n")
	}
	categories := make([]string, 0, len(groups))
	for c := range groups {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		if c := groups[categories[i]].amount.Cmp(groups[categories[j]].amount); c != 0 {
			return c > 0
		}
		return categories[i] < categories[j]
	})
	for _, c := range categories {
		fmt.Fprintf(&sb, "- **%s:** %s (%d bills)\n", c, rupees(groups[c].amount), groups[c].count)
	}

	sb.WriteString("\n### 💡 Tips\n")
	if pending.IsPositive() {
		fmt.Fprintf(&sb, "- You have %s in pending payments. Prioritize overdue bills first.\n", rupees(pending))
	} else {
		sb.WriteString("- All bills are paid! Great job staying on top of your finances.\n")
	}
	sb.WriteString("- Track your spending month over month to find savings.\n")
	sb.WriteString("- Consider auto-pay for recurring bills so no due date slips.\n")
	return sb.String()
}
