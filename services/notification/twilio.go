package notification

import (
	"context"
	"strings"

	"emireminder/utils"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

const whatsAppPrefix = "whatsapp:"

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioTransport sends SMS or WhatsApp messages through Twilio.
type TwilioTransport struct {
	client   messageCreator
	from     string
	whatsApp bool
	devSkip  bool
	logger   *zap.Logger
}

type TwilioOptions struct {
	AccountSID string
	AuthToken  string
	From       string
	WhatsApp   bool
	// DevSkip logs messages instead of sending them.
	DevSkip bool
}

func NewTwilioTransport(opts TwilioOptions, logger *zap.Logger) *TwilioTransport {
	t := &TwilioTransport{
		from:     opts.From,
		whatsApp: opts.WhatsApp,
		devSkip:  opts.DevSkip || opts.AccountSID == "dev_skip",
		logger:   utils.LoggerOr(logger),
	}
	if opts.AccountSID != "" && !t.devSkip {
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: opts.AccountSID,
			Password: opts.AuthToken,
		})
		t.client = client.Api
	}
	return t
}

func (t *TwilioTransport) channel() string {
	if t.whatsApp {
		return "whatsapp"
	}
	return "sms"
}

func (t *TwilioTransport) Send(ctx context.Context, d Delivery) error {
	if err := ctx.Err(); err != nil {
		return utils.TransportFailure(t.channel()+" send cancelled", err)
	}
	phone := FormatE164(d.Phone)
	if phone == "" {
		return utils.TransportFailure("user has no phone number", nil)
	}
	if t.devSkip {
		t.logger.Info("Dev send", zap.String("channel", t.channel()), zap.String("to", phone), zap.String("message", d.Text))
		return nil
	}
	if t.client == nil {
		return utils.TransportFailure(t.channel()+" transport is not configured", nil)
	}

	to, from := phone, t.from
	if t.whatsApp {
		to = whatsAppPrefix + phone
		if !strings.HasPrefix(from, whatsAppPrefix) {
			from = whatsAppPrefix + from
		}
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(d.Text)

	resp, err := t.client.CreateMessage(params)
	if err != nil {
		t.logger.Error("Twilio send failed", zap.String("channel", t.channel()), zap.String("to", phone), zap.Error(err))
		return utils.TransportFailure(t.channel()+" send failed", err)
	}
	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	t.logger.Info("Message sent", zap.String("channel", t.channel()), zap.String("to", phone), zap.String("sid", sid))
	return nil
}

// FormatE164 normalizes an Indian phone number to E.164. Numbers that
// already carry a + are kept.
func FormatE164(phone string) string {
	phone = strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(phone))
	switch {
	case phone == "":
		return ""
	case strings.HasPrefix(phone, "+"):
		return phone
	case len(phone) == 12 && strings.HasPrefix(phone, "91"):
		return "+" + phone
	default:
		return "+91" + phone
	}
}
