// Package mail delivers outbound email through pluggable transports.
package mail

import (
	"context"
	"errors"
)

// Message is a single outbound email with text and HTML parts.
type Message struct {
	FromName    string
	FromAddress string
	ReplyTo     string
	To          string
	Subject     string
	Text        string
	HTML        string
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Verifier is implemented by transports that can check connectivity up front.
type Verifier interface {
	Verify(ctx context.Context) error
}

var (
	// ErrNoRecipient is returned when a message has no destination address.
	ErrNoRecipient = errors.New("mail: no recipient")
	// ErrRejected is returned when the provider refuses a message.
	ErrRejected = errors.New("mail: rejected by provider")
)
