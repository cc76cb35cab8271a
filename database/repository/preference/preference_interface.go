package preferenceRepo

import (
	"context"

	"emireminder/models"
)

// PreferenceRepository reads and writes per-user notification settings.
type PreferenceRepository interface {
	// Get returns the stored preference, or nil with no error when none exists.
	Get(ctx context.Context, userID string) (*models.UserPreference, error)
	// Upsert stores pref, replacing any previous value.
	Upsert(ctx context.Context, pref *models.UserPreference) error
}
