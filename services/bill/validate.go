package bill

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"emireminder/models"
	"emireminder/utils"

	"github.com/shopspring/decimal"
)

const (
	maxTitleLen       = 200
	maxNotesLen       = 2000
	maxInstitutionLen = 200
)

var maxAmount = decimal.NewFromInt(10_000_000)

// ValidateNew checks a bill about to be created and fills in defaults.
func ValidateNew(b *models.Bill, today time.Time) error {
	b.Title = strings.TrimSpace(b.Title)
	if b.Title == "" {
		return utils.InvalidInput("title is required")
	}
	if b.Frequency == "" {
		b.Frequency = models.FrequencyMonthly
	}
	if b.DueDate.IsZero() {
		return utils.InvalidInput("dueDate is required")
	}
	if models.DaysBetween(today, b.DueDate) < 0 {
		return utils.InvalidInput("dueDate cannot be in the past")
	}
	return validateFields(&b.Title, &b.Category, &b.Amount, &b.Frequency, &b.Notes, &b.Institution)
}

// ValidatePatch applies the creation rules to the fields present in p.
// A moved due date may lie in the past.
func ValidatePatch(p *models.BillPatch) error {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		if t == "" {
			return utils.InvalidInput("title cannot be empty")
		}
		p.Title = &t
	}
	return validateFields(p.Title, p.Category, p.Amount, p.Frequency, p.Notes, p.Institution)
}

func validateFields(title, category *string, amount *decimal.Decimal, freq *models.Frequency, notes, institution *string) error {
	if title != nil && utf8.RuneCountInString(*title) > maxTitleLen {
		return utils.InvalidInput("title must not exceed %d characters", maxTitleLen)
	}
	if category != nil && !slices.Contains(models.Categories, *category) {
		return utils.InvalidInput("category must be one of: %s", strings.Join(models.Categories, ", "))
	}
	if amount != nil {
		if !amount.IsPositive() {
			return utils.InvalidInput("amount must be greater than 0")
		}
		if amount.GreaterThan(maxAmount) {
			return utils.InvalidInput("amount cannot exceed %s", maxAmount.String())
		}
	}
	if freq != nil && !slices.Contains(models.Frequencies, *freq) {
		return utils.InvalidInput("frequency must be Monthly, Quarterly, Yearly or One-time")
	}
	if notes != nil && utf8.RuneCountInString(*notes) > maxNotesLen {
		return utils.InvalidInput("notes must not exceed %d characters", maxNotesLen)
	}
	if institution != nil && utf8.RuneCountInString(*institution) > maxInstitutionLen {
		return utils.InvalidInput("institution must not exceed %d characters", maxInstitutionLen)
	}
	return nil
}
