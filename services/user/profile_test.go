package user

import (
	"context"
	"testing"
	"time"

	"emireminder/database/sqlite"
	"emireminder/models"
	"emireminder/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func strPtr(s string) *string { return &s }

func newService(t *testing.T) (*DefaultUserService, *sqlite.Store) {
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return &DefaultUserService{
		Repo:   store.Users,
		Clock:  utils.FixedClock(time.Date(2025, 1, 1, 4, 30, 0, 0, time.UTC), time.UTC),
		Logger: zaptest.NewLogger(t),
	}, store
}

func TestUpdateProfileCreatesContact(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.GetProfile(ctx, "u1")
	assert.True(t, utils.IsNotFound(err))

	u, err := svc.UpdateProfile(ctx, "u1", models.ProfileUpdate{
		Name:  strPtr("  Asha "),
		Phone: strPtr("98765 43210"),
		Email: strPtr("Asha@Example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha", u.Name)
	assert.Equal(t, "+919876543210", u.Phone)
	assert.Equal(t, "asha@example.com", u.Email)

	got, err := svc.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "+919876543210", got.Phone)
}

func TestUpdateProfileKeepsPushToken(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, "u1", models.ProfileUpdate{Phone: strPtr("+14155550100")})
	require.NoError(t, err)
	require.NoError(t, store.Users.UpdateFCMToken(ctx, "u1", "fcm-1"))

	_, err = svc.UpdateProfile(ctx, "u1", models.ProfileUpdate{Name: strPtr("Ravi")})
	require.NoError(t, err)

	got, err := svc.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "fcm-1", got.FCMToken)
	assert.Equal(t, "+14155550100", got.Phone)
}

func TestUpdateProfileValidation(t *testing.T) {
	tests := []struct {
		name string
		req  models.ProfileUpdate
	}{
		{"empty update", models.ProfileUpdate{}},
		{"new contact without phone", models.ProfileUpdate{Name: strPtr("Asha")}},
		{"short phone", models.ProfileUpdate{Phone: strPtr("12345")}},
		{"letters in phone", models.ProfileUpdate{Phone: strPtr("98765abcde")}},
		{"plus in the middle", models.ProfileUpdate{Phone: strPtr("98765+43210")}},
		{"bad email", models.ProfileUpdate{Phone: strPtr("9876543210"), Email: strPtr("not-an-email")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newService(t)
			_, err := svc.UpdateProfile(context.Background(), "u1", tc.req)
			assert.Equal(t, utils.KindInvalidInput, utils.KindOf(err))
		})
	}
}
