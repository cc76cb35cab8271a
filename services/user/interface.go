package user

import (
	"context"

	userRepo "emireminder/database/repository/user"
	"emireminder/models"
	"emireminder/utils"

	"go.uber.org/zap"
)

// UserService keeps the contact details the dispatcher delivers to.
// Sign-in happens elsewhere; the bearer token subject is the user ID.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req models.ProfileUpdate) (*models.User, error)
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo   userRepo.UserRepository
	Clock  utils.Clock
	Logger *zap.Logger
}

func (s *DefaultUserService) logger() *zap.Logger {
	return utils.LoggerOr(s.Logger)
}
