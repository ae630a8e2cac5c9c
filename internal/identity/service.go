package identity

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/go-playground/validator/v10"

	"glownexa-backend/internal/mail"
	"glownexa-backend/internal/shared/telemetry"
	"glownexa-backend/internal/users"
)

// CodeMissingFields marks a sign-up form with blank fields.
const CodeMissingFields = "missing-fields"

var validate = validator.New()

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterResult is returned on a successful sign-up.
type RegisterResult struct {
	UID              string
	VerificationSent bool
}

// PasswordError is a sign-up password that fails the local rules.
type PasswordError struct {
	Requirements PasswordRequirements
}

func (e *PasswordError) Error() string { return PasswordRequirementsMessage }

// Service runs the account flows and mails the resulting links.
type Service struct {
	Provider    Provider
	Users       *users.Service
	Mailer      mail.Sender
	FromName    string
	FromAddress string
}

// Register creates the account and profile, then mails a verification link.
// A mail failure does not undo the account; the user can ask for a resend.
func (s *Service) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateRegister(in); err != nil {
		return RegisterResult{}, err
	}

	uid, err := s.Provider.CreateUser(ctx, in.Email, in.Password, in.Username)
	if err != nil {
		return RegisterResult{}, err
	}
	if s.Users != nil {
		if _, err := s.Users.Create(ctx, users.User{UID: uid, Username: in.Username, Email: in.Email}); err != nil && !errors.Is(err, users.ErrExists) {
			s.rollbackAccount(ctx, uid, in.Email, err)
			return RegisterResult{}, fmt.Errorf("save profile: %w", err)
		}
	}

	res := RegisterResult{UID: uid}
	if err := s.sendVerification(ctx, in.Email, in.Username); err != nil {
		telemetry.Error("identity.verification_mail_failed", map[string]any{"user_id": uid, "error": err})
		return res, nil
	}
	res.VerificationSent = true
	telemetry.Info("identity.registered", map[string]any{"user_id": uid})
	return res, nil
}

// rollbackAccount deletes an account whose profile could not be stored so the
// email can register again.
func (s *Service) rollbackAccount(ctx context.Context, uid, email string, cause error) {
	telemetry.Error("identity.profile_create_failed", map[string]any{"user_id": uid, "email": email, "error": cause})
	if err := s.Provider.DeleteUser(ctx, uid); err != nil {
		telemetry.Error("identity.account_rollback_failed", map[string]any{"user_id": uid, "email": email, "error": err})
	}
}

// ForgotPassword mails a reset link to email.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return &Error{Code: CodeInvalidEmail}
	}
	link, err := s.Provider.PasswordResetLink(ctx, email)
	if err != nil {
		return err
	}
	return s.send(ctx, email, "Reset your GlowNexa password",
		"We received a request to reset your password. Use the link below to choose a new one:",
		link, "If you did not ask for this you can ignore this email.")
}

// ResendVerification mails a fresh verification link to the signed-in user.
func (s *Service) ResendVerification(ctx context.Context, email, name string) error {
	if strings.TrimSpace(email) == "" {
		return &Error{Code: CodeInvalidEmail}
	}
	return s.sendVerification(ctx, email, name)
}

func (s *Service) sendVerification(ctx context.Context, email, name string) error {
	link, err := s.Provider.EmailVerificationLink(ctx, email)
	if err != nil {
		return err
	}
	greeting := "Welcome to GlowNexa!"
	if name != "" {
		greeting = "Welcome to GlowNexa, " + name + "!"
	}
	return s.send(ctx, email, "Verify your GlowNexa email",
		greeting+" Please confirm your email address to start your analyses:",
		link, "The link expires in 24 hours.")
}

func (s *Service) send(ctx context.Context, to, subject, intro, link, outro string) error {
	if s.Mailer == nil {
		return errors.New("mailer not configured")
	}
	text := intro + "\n\n" + link + "\n\n" + outro
	htmlBody := fmt.Sprintf(`<p>%s</p><p><a href="%s">%s</a></p><p>%s</p>`,
		html.EscapeString(intro), html.EscapeString(link), html.EscapeString(link), html.EscapeString(outro))
	return s.Mailer.Send(ctx, mail.Message{
		FromName:    s.FromName,
		FromAddress: s.FromAddress,
		To:          to,
		Subject:     subject,
		Text:        text,
		HTML:        htmlBody,
	})
}

func validateRegister(in RegisterInput) error {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return &Error{Code: CodeMissingFields, Msg: "All fields are required"}
	}
	if err := validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				if fe.Field() == "Email" {
					return &Error{Code: CodeInvalidEmail}
				}
			}
			return &Error{Code: CodeMissingFields, Msg: fieldErrs[0].Field() + " is invalid"}
		}
		return err
	}
	if req := CheckPassword(in.Password); !req.OK() {
		return &PasswordError{Requirements: req}
	}
	return nil
}
