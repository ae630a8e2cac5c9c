package mail

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPConfig configures SMTPSender.
type SMTPConfig struct {
	Host string
	Port int
	// Secure selects implicit TLS; otherwise STARTTLS is used when offered.
	Secure   bool
	User     string
	Pass     string
	Timeout  time.Duration
	Envelope string
}

// SMTPSender relays messages through an SMTP server.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender constructs an SMTPSender. No connection is made until Send or Verify.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Envelope == "" {
		cfg.Envelope = cfg.User
	}
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) client() (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTimeout(s.cfg.Timeout),
	}
	if s.cfg.Secure {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	if s.cfg.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.User),
			gomail.WithPassword(s.cfg.Pass),
		)
	}
	c, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client %s:%d: %w", s.cfg.Host, s.cfg.Port, err)
	}
	return c, nil
}

// Verify dials the server, authenticates and disconnects.
func (s *SMTPSender) Verify(ctx context.Context) error {
	c, err := s.client()
	if err != nil {
		return err
	}
	if err := c.DialWithContext(ctx); err != nil {
		return fmt.Errorf("smtp dial %s:%d: %w", s.cfg.Host, s.cfg.Port, err)
	}
	return c.Close()
}

// Send delivers msg in a single SMTP session.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := s.buildMsg(msg)
	if err != nil {
		return err
	}
	c, err := s.client()
	if err != nil {
		return err
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) buildMsg(msg Message) (*gomail.Msg, error) {
	if msg.To == "" {
		return nil, ErrNoRecipient
	}
	m := gomail.NewMsg()
	if err := m.FromFormat(msg.FromName, msg.FromAddress); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if s.cfg.Envelope != "" {
		if err := m.EnvelopeFrom(s.cfg.Envelope); err != nil {
			return nil, fmt.Errorf("smtp envelope from: %w", err)
		}
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("smtp reply-to: %w", err)
		}
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("smtp to: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}
