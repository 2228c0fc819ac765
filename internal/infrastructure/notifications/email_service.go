package notifications

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/you/rentauthsvc/domain"
)

// EmailServiceImpl implements domain.Mailer over SMTP.
type EmailServiceImpl struct {
	dialer *gomail.Dialer
	from   string
}

// NewEmailService creates a new SMTP mailer
func NewEmailService(host string, port int, username, password, from string) domain.Mailer {
	return &EmailServiceImpl{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// SendVerificationEmail implements domain.Mailer
func (s *EmailServiceImpl) SendVerificationEmail(to, token string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Verify your email address")

	body := fmt.Sprintf(`
		<h3>Welcome to RentPay</h3>
		<p>Use the following token to verify your email address: <strong>%s</strong></p>
		<p>If you did not create this account, you can ignore this email.</p>
	`, token)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

// SendPasswordResetEmail implements domain.Mailer
func (s *EmailServiceImpl) SendPasswordResetEmail(to, token string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Password reset request")

	body := fmt.Sprintf(`
		<h3>Password reset requested</h3>
		<p>Use the following token to reset your password: <strong>%s</strong></p>
		<p>The token expires in one hour. If you did not request this change, you can ignore this email.</p>
	`, token)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}
