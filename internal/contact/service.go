package contact

import (
	"context"
	"errors"
	"fmt"

	"glownexa-backend/internal/mail"
	"glownexa-backend/internal/shared/metrics"
	"glownexa-backend/internal/shared/telemetry"
)

// ErrMissingFields is returned when name, email or message is empty.
var ErrMissingFields = errors.New("missing required fields")

// Service relays contact submissions to the support inbox.
type Service struct {
	Sender mail.Sender
	To     string
}

// Submit validates req and hands exactly one message to the sender.
func (s *Service) Submit(ctx context.Context, req Request) error {
	if !req.Complete() {
		return ErrMissingFields
	}
	if err := s.Sender.Send(ctx, BuildMessage(req, s.To)); err != nil {
		metrics.IncContactFailed()
		return fmt.Errorf("relay contact message: %w", err)
	}
	metrics.IncContactSent()
	return nil
}

// VerifyTransport checks the mail transport once and logs the outcome.
// It never fails the caller.
func (s *Service) VerifyTransport(ctx context.Context) {
	v, ok := s.Sender.(mail.Verifier)
	if !ok {
		return
	}
	if err := v.Verify(ctx); err != nil {
		telemetry.Error("mail.verify.failed", map[string]any{"error": err})
		return
	}
	telemetry.Info("mail.verify.ok", nil)
}
