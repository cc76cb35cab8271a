package insight

import (
	"context"
	"fmt"
	"time"

	billRepo "emireminder/database/repository/bill"
	preferenceRepo "emireminder/database/repository/preference"
	"emireminder/models"
	"emireminder/utils"

	"go.uber.org/zap"
)

var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"ta": "Tamil",
	"te": "Telugu",
	"kn": "Kannada",
	"mr": "Marathi",
	"gu": "Gujarati",
	"bn": "Bengali",
}

type InsightService interface {
	ExplainBill(ctx context.Context, userID, billID string) (*models.Insight, error)
	MonthlyInsights(ctx context.Context, userID string, month, year int) (*models.Insight, error)
}

// DefaultInsightService builds insights from templates. When a Narrator
// is set the template text is rewritten by it; on failure the template
// text is returned.
type DefaultInsightService struct {
	Bills       billRepo.BillRepository
	Preferences preferenceRepo.PreferenceRepository
	Narrator    Narrator
	Cache       Cache
	Clock       utils.Clock
	Logger      *zap.Logger
}

func (s *DefaultInsightService) ExplainBill(ctx context.Context, userID, billID string) (*models.Insight, error) {
	bill, err := s.Bills.GetByID(ctx, userID, billID)
	if err != nil {
		return nil, err
	}
	return s.narrate(ctx, userID, ExplainBill(*bill, s.Clock.Today())), nil
}

// MonthlyInsights summarizes a month. Zero month or year means the current one.
func (s *DefaultInsightService) MonthlyInsights(ctx context.Context, userID string, month, year int) (*models.Insight, error) {
	today := s.Clock.Today()
	if month == 0 {
		month = int(today.Month())
	}
	if year == 0 {
		year = today.Year()
	}
	if month < 1 || month > 12 {
		return nil, utils.InvalidInput("month must be between 1 and 12")
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	bills, err := s.Bills.ListDueBetween(ctx, userID, start, start.AddDate(0, 1, -1))
	if err != nil {
		return nil, err
	}
	return s.narrate(ctx, userID, MonthlyReport(bills, time.Month(month), year, today)), nil
}

func (s *DefaultInsightService) narrate(ctx context.Context, userID, text string) *models.Insight {
	out := &models.Insight{Markdown: text, Source: models.InsightTemplate}
	if s.Narrator == nil {
		return out
	}

	prompt := fmt.Sprintf("Rewrite these personal finance notes in a friendly tone in %s. "+
		"Keep every amount, date and count exactly as given and answer in markdown.\n\n%s",
		s.language(ctx, userID), text)
	key := cacheKey(prompt)
	if s.Cache != nil {
		if cached, ok := s.Cache.Get(ctx, key); ok {
			return cached
		}
	}
	narrated, err := s.Narrator.Narrate(ctx, prompt)
	if err != nil {
		utils.LoggerOr(s.Logger).Warn("Narration failed, using template", zap.String("userId", userID), zap.Error(err))
		return out
	}
	out.Markdown = narrated
	out.Source = models.InsightGemini
	if s.Cache != nil {
		s.Cache.Set(ctx, key, out)
	}
	return out
}

func (s *DefaultInsightService) language(ctx context.Context, userID string) string {
	if s.Preferences != nil {
		if pref, err := s.Preferences.Get(ctx, userID); err == nil && pref != nil {
			if name, ok := languageNames[pref.Language]; ok {
				return name
			}
		}
	}
	return languageNames["en"]
}
