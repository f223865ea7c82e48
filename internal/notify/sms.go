package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/HakiMohamed/LocationsGuard/config"
)

// TwilioSender delivers phone verification codes through Twilio. Like the
// mailer it degrades to logging and skipping when credentials are absent.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
	logger *slog.Logger
}

func NewTwilioSender(cfg *config.Config, logger *slog.Logger) *TwilioSender {
	s := &TwilioSender{from: cfg.TwilioPhoneNumber, logger: logger}

	if !strings.HasPrefix(cfg.TwilioAccountSID, "AC") || cfg.TwilioAuthToken == "" {
		logger.Warn("twilio credentials not configured, sms delivery disabled")
		return s
	}

	s.client = twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})

	return s
}

func (s *TwilioSender) SendVerificationCode(_ context.Context, phoneNumber, code string) error {
	if s.client == nil || s.from == "" {
		s.logger.Warn("sms delivery skipped, no client configured", "to", phoneNumber)
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phoneNumber)
	params.SetFrom(s.from)
	params.SetBody(fmt.Sprintf("Your LocationsGuard verification code is: %s. Valid for 10 minutes.", code))

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send verification code: %w", err)
	}

	return nil
}
