package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/riverline/collections-platform/pkg/logging"
)

var twilioTracer = otel.Tracer("riverline.internal.messaging.twilio")

// TwilioSender sends WhatsApp messages and places voice calls through
// the Twilio REST API.
type TwilioSender struct {
	client       *twilio.RestClient
	whatsappFrom string
	voiceFrom    string
	logger       *logging.Logger
}

// NewTwilioSender builds a sender. Returns an error when credentials
// are missing so callers can fall back to a noop sender in local runs.
func NewTwilioSender(accountSID, authToken, whatsappFrom, voiceFrom string, logger *logging.Logger) (*TwilioSender, error) {
	if accountSID == "" || authToken == "" {
		return nil, errors.New("messaging: twilio credentials missing")
	}
	if logger == nil {
		logger = logging.Default()
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{
		client:       client,
		whatsappFrom: whatsappFrom,
		voiceFrom:    voiceFrom,
		logger:       logger,
	}, nil
}

// SendWhatsApp delivers one WhatsApp message and returns the message SID.
func (s *TwilioSender) SendWhatsApp(ctx context.Context, to, body string) (string, error) {
	_, span := twilioTracer.Start(ctx, "messaging.twilio.whatsapp", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if !strings.HasPrefix(s.whatsappFrom, "whatsapp:") {
		err := errors.New("messaging: TWILIO_WHATSAPP_FROM must be a whatsapp: sender")
		span.RecordError(err)
		return "", err
	}
	if strings.TrimSpace(body) == "" {
		return "", errors.New("messaging: body required")
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(s.whatsappFrom)
	params.SetTo(FormatWhatsApp(to))
	params.SetBody(body)

	msg, err := s.client.Api.CreateMessage(params)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("whatsapp send failed", "error", err, "to", FormatWhatsApp(to))
		return "", fmt.Errorf("messaging: whatsapp send failed: %w", err)
	}

	sid := ""
	if msg.Sid != nil {
		sid = *msg.Sid
	}
	span.SetAttributes(attribute.String("twilio.message_sid", sid))
	s.logger.Info("whatsapp message sent", "sid", sid)
	return sid, nil
}

// StartCall places an outbound voice call pointed at the TwiML webhook.
func (s *TwilioSender) StartCall(ctx context.Context, to, webhookURL string) (string, error) {
	_, span := twilioTracer.Start(ctx, "messaging.twilio.call", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if !strings.HasPrefix(s.voiceFrom, "+") {
		err := errors.New("messaging: TWILIO_VOICE_NUMBER must be E.164")
		span.RecordError(err)
		return "", err
	}

	params := &twilioApi.CreateCallParams{}
	params.SetTo(FormatE164(to))
	params.SetFrom(s.voiceFrom)
	params.SetUrl(webhookURL)

	call, err := s.client.Api.CreateCall(params)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("call initiation failed", "error", err, "to", FormatE164(to))
		return "", fmt.Errorf("messaging: call failed: %w", err)
	}

	sid := ""
	if call.Sid != nil {
		sid = *call.Sid
	}
	span.SetAttributes(attribute.String("twilio.call_sid", sid))
	s.logger.Info("call initiated", "sid", sid)
	return sid, nil
}
