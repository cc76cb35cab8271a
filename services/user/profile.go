package user

import (
	"context"
	"net/mail"
	"strings"
	"unicode/utf8"

	"emireminder/models"
	"emireminder/services/notification"
	"emireminder/utils"

	"go.uber.org/zap"
)

const maxNameLength = 100

func (s *DefaultUserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.Repo.GetByID(ctx, userID)
}

// UpdateProfile applies the set fields, creating the contact record on the
// first call. The push token is never touched here.
func (s *DefaultUserService) UpdateProfile(ctx context.Context, userID string, req models.ProfileUpdate) (*models.User, error) {
	if req.Name == nil && req.Email == nil && req.Phone == nil {
		return nil, utils.InvalidInput("no fields to update")
	}

	u, err := s.Repo.GetByID(ctx, userID)
	switch {
	case utils.IsNotFound(err):
		u = &models.User{ID: userID, CreatedAt: s.Clock.Now()}
	case err != nil:
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if utf8.RuneCountInString(name) > maxNameLength {
			return nil, utils.InvalidInput("name must be at most %d characters", maxNameLength)
		}
		u.Name = name
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != "" {
			if _, err := mail.ParseAddress(email); err != nil {
				return nil, utils.InvalidInput("email is not valid")
			}
		}
		u.Email = email
	}
	if req.Phone != nil {
		phone, err := normalizePhone(*req.Phone)
		if err != nil {
			return nil, err
		}
		u.Phone = phone
	}
	if u.Phone == "" {
		return nil, utils.InvalidInput("phone is required")
	}
	u.UpdatedAt = s.Clock.Now()

	if err := s.Repo.Upsert(ctx, u); err != nil {
		s.logger().Error("Failed to save profile", zap.String("userId", userID), zap.Error(err))
		return nil, err
	}
	s.logger().Info("Profile updated", zap.String("userId", userID))
	return u, nil
}

// normalizePhone stores numbers in E.164 so SMS and WhatsApp can use them as is.
func normalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	var digits int
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0, r == ' ', r == '-':
		default:
			return "", utils.InvalidInput("phone may only contain digits, spaces, dashes and a leading +")
		}
	}
	if digits < 10 || digits > 15 {
		return "", utils.InvalidInput("phone must have between 10 and 15 digits")
	}
	return notification.FormatE164(raw), nil
}
