package contact

import (
	"fmt"
	"html"
	"strings"

	"glownexa-backend/internal/mail"
)

// DefaultSubject is used when the form leaves the subject empty.
const DefaultSubject = "Contact Form Message"

// Request is a contact form submission.
type Request struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Complete reports whether name, email and message are all present.
func (r Request) Complete() bool {
	return r.Name != "" && r.Email != "" && r.Message != ""
}

// BuildMessage renders a submission into the mail delivered to the support inbox.
func BuildMessage(req Request, to string) mail.Message {
	subject := req.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	name := html.EscapeString(req.Name)
	email := html.EscapeString(req.Email)
	body := strings.ReplaceAll(html.EscapeString(req.Message), "\n", "<br/>")

	return mail.Message{
		FromName:    req.Name,
		FromAddress: req.Email,
		ReplyTo:     req.Email,
		To:          to,
		Subject:     subject,
		Text:        fmt.Sprintf("Name: %s\nEmail: %s\n\n%s", req.Name, req.Email, req.Message),
		HTML: fmt.Sprintf("<p><strong>Name:</strong> %s</p>\n"+
			"<p><strong>Email:</strong> %s</p>\n"+
			"<p><strong>Message:</strong></p>\n"+
			"<p>%s</p>", name, email, body),
	}
}
