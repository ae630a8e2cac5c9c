package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender delivers messages through the SendGrid v3 API.
type SendGridSender struct {
	// From overrides the sender address; SendGrid only accepts verified senders.
	From string
	send func(ctx context.Context, m *sgmail.SGMailV3) (*rest.Response, error)
}

// NewSendGridSender constructs a SendGridSender for the given API key.
func NewSendGridSender(apiKey, from string) *SendGridSender {
	client := sendgrid.NewSendClient(apiKey)
	return &SendGridSender{From: from, send: client.SendWithContext}
}

// Send delivers msg; any status >= 400 is an error.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	m, err := s.build(msg)
	if err != nil {
		return err
	}
	resp, err := s.send(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: sendgrid status %d: %s", ErrRejected, resp.StatusCode, resp.Body)
	}
	return nil
}

func (s *SendGridSender) build(msg Message) (*sgmail.SGMailV3, error) {
	if msg.To == "" {
		return nil, ErrNoRecipient
	}
	from := sgmail.NewEmail(msg.FromName, msg.FromAddress)
	replyTo := msg.ReplyTo
	if s.From != "" {
		if replyTo == "" {
			replyTo = msg.FromAddress
		}
		from = sgmail.NewEmail(msg.FromName, s.From)
	}
	m := sgmail.NewSingleEmail(from, msg.Subject, sgmail.NewEmail("", msg.To), msg.Text, msg.HTML)
	if replyTo != "" {
		m.SetReplyTo(sgmail.NewEmail(msg.FromName, replyTo))
	}
	return m, nil
}
