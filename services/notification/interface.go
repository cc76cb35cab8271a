package notification

import (
	"context"
	"strings"

	userRepo "emireminder/database/repository/user"
	"emireminder/models"
	"emireminder/utils"

	"go.uber.org/zap"
)

// Delivery is one rendered reminder addressed to a user.
type Delivery struct {
	Key        string
	ReminderID string
	UserID     string
	Phone      string
	FCMToken   string
	Title      string
	Text       string
}

// Transport sends a delivery over one channel.
type Transport interface {
	Send(ctx context.Context, d Delivery) error
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, d Delivery) error

func (f TransportFunc) Send(ctx context.Context, d Delivery) error { return f(ctx, d) }

// Transports maps every channel to its transport.
type Transports struct {
	Push     Transport
	SMS      Transport
	WhatsApp Transport
}

// For returns the transport of c. Unknown channels and missing transports
// fall back to push.
func (t Transports) For(c models.Channel) Transport {
	var tr Transport
	switch c {
	case models.ChannelSMS:
		tr = t.SMS
	case models.ChannelWhatsApp:
		tr = t.WhatsApp
	}
	if tr == nil {
		tr = t.Push
	}
	if tr == nil {
		return noopTransport{}
	}
	return tr
}

type noopTransport struct{}

func (noopTransport) Send(context.Context, Delivery) error { return nil }

// NotificationService manages the delivery addresses of users.
type NotificationService interface {
	RegisterFCMToken(ctx context.Context, userID, token string) error
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Users  userRepo.UserRepository
	Logger *zap.Logger
}

// RegisterFCMToken stores the device token push reminders go to.
func (s *DefaultNotificationService) RegisterFCMToken(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return utils.InvalidInput("fcmToken is required")
	}
	if err := s.Users.UpdateFCMToken(ctx, userID, token); err != nil {
		return err
	}
	utils.LoggerOr(s.Logger).Info("FCM token registered", zap.String("userId", userID))
	return nil
}
