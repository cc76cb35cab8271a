package preference

import (
	"context"
	"testing"

	"emireminder/database/sqlite"
	"emireminder/models"
	"emireminder/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newService(t *testing.T) *DefaultPreferenceService {
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return &DefaultPreferenceService{Repo: store.Preferences, Logger: zaptest.NewLogger(t)}
}

func ptr[T any](v T) *T { return &v }

func TestGetPreferencesDefaults(t *testing.T) {
	svc := newService(t)
	pref, err := svc.GetPreferences(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPreference("u1"), *pref)
}

func TestUpdatePreferencesIsPartial(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.UpdatePreferences(ctx, "u1", models.PreferencePatch{
		SMSEnabled:   ptr(true),
		ReminderDays: ptr(" 5, 1 ,0"),
	})
	require.NoError(t, err)

	pref, err := svc.UpdatePreferences(ctx, "u1", models.PreferencePatch{Language: ptr("hi")})
	require.NoError(t, err)
	assert.True(t, pref.PushEnabled)
	assert.True(t, pref.SMSEnabled)
	assert.False(t, pref.WhatsAppEnabled)
	assert.Equal(t, "5,1,0", pref.ReminderDays)
	assert.Equal(t, "hi", pref.Language)

	stored, err := svc.GetPreferences(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "hi", stored.Language)
	assert.Equal(t, "5,1,0", stored.ReminderDays)
}

func TestUpdatePreferencesValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for _, days := range []string{"31", "7,,3", "-1", "a", ""} {
		_, err := svc.UpdatePreferences(ctx, "u1", models.PreferencePatch{ReminderDays: ptr(days)})
		assert.Equal(t, utils.KindInvalidInput, utils.KindOf(err), days)
	}
	_, err := svc.UpdatePreferences(ctx, "u1", models.PreferencePatch{Language: ptr("fr")})
	assert.Equal(t, utils.KindInvalidInput, utils.KindOf(err))
}

func TestValidReminderDays(t *testing.T) {
	assert.True(t, ValidReminderDays("7,3,0"))
	assert.True(t, ValidReminderDays("30"))
	assert.False(t, ValidReminderDays("7,3,x"))
}
