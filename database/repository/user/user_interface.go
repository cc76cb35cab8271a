package userRepo

import (
	"context"

	"emireminder/models"
)

// UserRepository defines methods for the user contact records.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// Upsert creates or replaces a user record.
	Upsert(ctx context.Context, user *models.User) error
	// UpdateFCMToken stores the push token of an existing user.
	UpdateFCMToken(ctx context.Context, id, token string) error
}
