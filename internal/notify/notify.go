package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Notifier delivers a short text message to a phone number.
type Notifier interface {
	SendSMS(ctx context.Context, to, body string) error
}

var ErrNoRecipient = errors.New("recipient phone is empty")

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

type Twilio struct {
	api  messageCreator
	from string
	log  *slog.Logger
}

func NewTwilio(accountSID, authToken, from string, log *slog.Logger) *Twilio {
	if log == nil {
		log = slog.Default()
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &Twilio{
		api:  client.Api,
		from: from,
		log:  log.With(slog.String("component", "notify.twilio")),
	}
}

func (t *Twilio) SendSMS(ctx context.Context, to, body string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	msg, err := t.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	if msg != nil && msg.Sid != nil {
		t.log.Debug("sms queued", slog.String("sid", *msg.Sid))
	}
	return nil
}

// LogNotifier writes messages to the log instead of sending them. It is used
// when no SMS provider is configured.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log.With(slog.String("component", "notify.log"))}
}

func (n *LogNotifier) SendSMS(ctx context.Context, to, body string) error {
	if strings.TrimSpace(to) == "" {
		return ErrNoRecipient
	}
	n.log.Info("sms", slog.String("to", to), slog.String("body", body))
	return nil
}
