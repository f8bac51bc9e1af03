package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"github.com/jskalicky/shoply-api/internal/logging"
)

// Service sends account mails over SMTP. Send failures are returned to the
// caller; there is no retry here.
type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string
}

func NewService(smtpHost, smtpPort, smtpUser, smtpPassword string) *Service {
	return &Service{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		fromEmail:    smtpUser,
	}
}

// SendLoginNotice informs the account holder about a successful login.
func (s *Service) SendLoginNotice(ctx context.Context, toEmail string) error {
	logger := logging.GetLoggerFromContext(ctx)

	body, err := renderTemplate(loginNoticeTemplate, map[string]string{
		"Email": toEmail,
		"When":  time.Now().UTC().Format(time.RFC1123),
	})
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.send(toEmail, "New login to your account", body); err != nil {
		logger.Error("failed to send login notice", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("login notice sent", "email", toEmail)
	return nil
}

// SendVerificationLink mails the e-mail verification link.
func (s *Service) SendVerificationLink(ctx context.Context, toEmail, link string) error {
	logger := logging.GetLoggerFromContext(ctx)

	body, err := renderTemplate(verificationTemplate, map[string]string{"Link": link})
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.send(toEmail, "Verify your email address", body); err != nil {
		logger.Error("failed to send verification email", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("verification email sent", "email", toEmail)
	return nil
}

// SendResetLink mails the password reset link.
func (s *Service) SendResetLink(ctx context.Context, toEmail, link string) error {
	logger := logging.GetLoggerFromContext(ctx)

	body, err := renderTemplate(resetTemplate, map[string]string{"Link": link})
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.send(toEmail, "Reset your password", body); err != nil {
		logger.Error("failed to send reset email", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("reset email sent", "email", toEmail)
	return nil
}

func (s *Service) send(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromEmail, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	return smtp.SendMail(addr, auth, s.fromEmail, []string{to}, msg)
}

func renderTemplate(tmpl string, data any) (string, error) {
	t, err := template.New("email").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}

const verificationTemplate = `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2>Verify your email address</h2>
    <p>Thank you for signing up! Click the button below to verify your email address and activate your account.</p>
    <p><a href="{{.Link}}" style="display: inline-block; background-color: #4F46E5; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px;">Verify Email Address</a></p>
    <p>Or copy and paste this link into your browser:</p>
    <p style="word-break: break-all; color: #4F46E5;">{{.Link}}</p>
    <p>If you didn't create an account, you can safely ignore this email.</p>
</body>
</html>
`

const resetTemplate = `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2>Reset your password</h2>
    <p>You requested to reset your password. Click the button below to create a new one.</p>
    <p><a href="{{.Link}}" style="display: inline-block; background-color: #4F46E5; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px;">Reset Password</a></p>
    <p>Or copy and paste this link into your browser:</p>
    <p style="word-break: break-all; color: #4F46E5;">{{.Link}}</p>
    <p>If you didn't request a password reset, you can safely ignore this email. Your password will remain unchanged.</p>
</body>
</html>
`

const loginNoticeTemplate = `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2>New login</h2>
    <p>Your account {{.Email}} was just used to log in at {{.When}}.</p>
    <p>If this wasn't you, please reset your password immediately.</p>
</body>
</html>
`
