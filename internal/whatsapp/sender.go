// Package whatsapp connects the conversation engine to Twilio's WhatsApp API.
package whatsapp

import (
	"context"
	"log/slog"
	"strings"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	apperrors "github.com/Proton-105/wasawasa-bot/internal/errors"
	"github.com/Proton-105/wasawasa-bot/pkg/config"
	"github.com/Proton-105/wasawasa-bot/pkg/metrics"
)

const (
	addressPrefix = "whatsapp:"
	// DefaultFromNumber is the Twilio WhatsApp sandbox number.
	DefaultFromNumber = "+14155238886"
)

// Sender delivers a text message to a WhatsApp number.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// messageCreator is the slice of the Twilio REST API used for sending.
type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// TwilioSender sends WhatsApp messages through the Twilio Messages API.
type TwilioSender struct {
	creator messageCreator
	from    string
	breaker *apperrors.CircuitBreaker
	log     *slog.Logger
}

var _ Sender = (*TwilioSender)(nil)

// NewTwilioSender builds a sender from cfg. Missing credentials leave the sender
// usable but every Send fails with a configuration error.
func NewTwilioSender(cfg config.TwilioConfig, log *slog.Logger) *TwilioSender {
	var creator messageCreator
	if cfg.AccountSID != "" && cfg.AuthToken != "" {
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		})
		creator = client.Api
	}

	return newTwilioSender(creator, cfg.WhatsAppNumber, log)
}

func newTwilioSender(creator messageCreator, from string, log *slog.Logger) *TwilioSender {
	if log == nil {
		log = slog.Default()
	}
	if from == "" {
		from = DefaultFromNumber
	}

	return &TwilioSender{
		creator: creator,
		from:    Address(from),
		breaker: apperrors.NewCircuitBreaker(),
		log:     log,
	}
}

// Configured reports whether Twilio credentials were supplied.
func (s *TwilioSender) Configured() bool {
	return s.creator != nil
}

// Send delivers body to the WhatsApp number to. Failures are returned, never retried.
func (s *TwilioSender) Send(ctx context.Context, to, body string) error {
	if s.creator == nil {
		metrics.RecordOutbound("unconfigured")
		return apperrors.NewConfigurationError("twilio credentials are not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &openapi.CreateMessageParams{}
	params.SetFrom(s.from)
	params.SetTo(Address(to))
	params.SetBody(body)

	var sid string
	err := s.breaker.Call(func() error {
		resp, err := s.creator.CreateMessage(params)
		if err != nil {
			return err
		}
		if resp != nil && resp.Sid != nil {
			sid = *resp.Sid
		}
		return nil
	})
	if err != nil {
		metrics.RecordOutbound("failed")
		s.log.ErrorContext(ctx, "error sending whatsapp message", slog.String("to", to), slog.Any("error", err))
		return apperrors.NewExternalAPIError("twilio", err)
	}

	metrics.RecordOutbound("sent")
	s.log.InfoContext(ctx, "whatsapp message sent", slog.String("to", to), slog.String("sid", sid))

	return nil
}

// Address adds the whatsapp: channel prefix to a phone number when missing.
func Address(phone string) string {
	if strings.HasPrefix(phone, addressPrefix) {
		return phone
	}
	return addressPrefix + phone
}

// CustomerID strips the whatsapp: channel prefix from a Twilio address.
func CustomerID(address string) string {
	return strings.TrimPrefix(address, addressPrefix)
}
