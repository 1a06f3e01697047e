package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"vistream/internal/models"
)

type EmailService interface {
	SendVerificationCode(email, code string, purpose models.Purpose) error
	SendWelcomeEmail(email, displayName string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendVerificationCode(email, code string, purpose models.Purpose) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", verificationSubject(purpose))

	body := fmt.Sprintf(`
		<h3>%s</h3>
		<p>Your verification code is: <strong>%s</strong></p>
		<p>The code is valid for 5 minutes. If you did not request it, you can ignore this email.</p>
		<p>— The Vistream Team</p>
	`, verificationHeading(purpose), code)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	return nil
}

func (s *emailService) SendWelcomeEmail(email, displayName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to Vistream!")

	body := fmt.Sprintf(`
		<h2>Welcome to Vistream, %s!</h2>
		<p>Your account has been confirmed and is ready to use.</p>
		<p>Discover, like and save videos — or start uploading your own.</p>
		<p>Best regards,<br>The Vistream Team</p>
	`, displayName)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}

	return nil
}

func verificationSubject(purpose models.Purpose) string {
	switch purpose {
	case models.PurposePasswordChange:
		return "Confirm your password change"
	default:
		return "Confirm your registration"
	}
}

func verificationHeading(purpose models.Purpose) string {
	switch purpose {
	case models.PurposeRegisterCreator:
		return "Creator registration"
	case models.PurposePasswordChange:
		return "Password change requested"
	default:
		return "Viewer registration"
	}
}
