package notification

import (
	"context"

	"emireminder/services/message"
	"emireminder/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

type fcmSender interface {
	Send(ctx context.Context, msg *messaging.Message) (string, error)
}

// PushTransport delivers reminders through Firebase Cloud Messaging.
// Push is best effort: errors are logged and the send counts as delivered.
type PushTransport struct {
	client fcmSender
	logger *zap.Logger
}

// NewPushTransport wraps an FCM client. A nil client logs instead of sending.
func NewPushTransport(client *messaging.Client, logger *zap.Logger) *PushTransport {
	t := &PushTransport{logger: utils.LoggerOr(logger)}
	if client != nil {
		t.client = client
	}
	return t
}

func (t *PushTransport) Send(ctx context.Context, d Delivery) error {
	if t.client == nil || d.FCMToken == "" {
		t.logger.Debug("Push skipped", zap.String("reminderId", d.ReminderID), zap.Bool("hasToken", d.FCMToken != ""))
		return nil
	}

	title := d.Title
	if title == "" {
		title = message.PushTitle
	}
	msg := &messaging.Message{
		Token: d.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  d.Text,
		},
		Data: map[string]string{
			"type":       "bill_reminder",
			"reminderId": d.ReminderID,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	id, err := t.client.Send(ctx, msg)
	if err != nil {
		t.logger.Warn("FCM send failed", zap.String("reminderId", d.ReminderID), zap.Error(err))
		return nil
	}
	t.logger.Debug("Push sent", zap.String("reminderId", d.ReminderID), zap.String("messageId", id))
	return nil
}
