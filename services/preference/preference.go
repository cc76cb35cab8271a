package preference

import (
	"context"
	"slices"
	"strconv"
	"strings"

	preferenceRepo "emireminder/database/repository/preference"
	"emireminder/models"
	"emireminder/utils"

	"go.uber.org/zap"
)

const maxReminderDay = 30

// Languages are the supported message languages.
var Languages = []string{"en", "hi", "ta", "te", "kn", "mr", "gu", "bn"}

type PreferenceService interface {
	GetPreferences(ctx context.Context, userID string) (*models.UserPreference, error)
	UpdatePreferences(ctx context.Context, userID string, patch models.PreferencePatch) (*models.UserPreference, error)
}

// DefaultPreferenceService stores preferences. Changes apply to reminders
// planned afterwards; existing reminders are not touched.
type DefaultPreferenceService struct {
	Repo   preferenceRepo.PreferenceRepository
	Logger *zap.Logger
}

// GetPreferences returns the stored preferences or the defaults.
func (s *DefaultPreferenceService) GetPreferences(ctx context.Context, userID string) (*models.UserPreference, error) {
	pref, err := s.Repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pref == nil {
		def := models.DefaultPreference(userID)
		return &def, nil
	}
	return pref, nil
}

func (s *DefaultPreferenceService) UpdatePreferences(ctx context.Context, userID string, patch models.PreferencePatch) (*models.UserPreference, error) {
	if patch.ReminderDays != nil {
		days, err := NormalizeReminderDays(*patch.ReminderDays)
		if err != nil {
			return nil, err
		}
		patch.ReminderDays = &days
	}
	if patch.Language != nil && !slices.Contains(Languages, *patch.Language) {
		return nil, utils.InvalidInput("language must be one of: %s", strings.Join(Languages, ", "))
	}

	pref, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	patch.Apply(pref)
	if err := s.Repo.Upsert(ctx, pref); err != nil {
		utils.LoggerOr(s.Logger).Error("Failed to save preferences", zap.String("userId", userID), zap.Error(err))
		return nil, err
	}
	return pref, nil
}

// NormalizeReminderDays checks a comma-separated list of day offsets in
// 0..30 and returns it without whitespace.
func NormalizeReminderDays(raw string) (string, error) {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > maxReminderDay {
			return "", utils.InvalidInput("reminderDays must be comma-separated integers between 0 and %d", maxReminderDay)
		}
		out = append(out, strconv.Itoa(n))
	}
	return strings.Join(out, ","), nil
}

// ValidReminderDays reports whether raw passes NormalizeReminderDays.
func ValidReminderDays(raw string) bool {
	_, err := NormalizeReminderDays(raw)
	return err == nil
}
