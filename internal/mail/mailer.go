package mail

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"gopkg.in/gomail.v2"
)

// OTPLength is the number of digits in a one-time password.
const OTPLength = 6

// Mailer delivers OTP mails. The SMTP implementation is swapped for a mock
// in tests.
type Mailer interface {
	SendVerificationOTP(to, username, otp string) error
	SendPasswordResetOTP(to, otp string) error
}

// SMTPMailer sends mail through an SMTP relay using STARTTLS.
type SMTPMailer struct {
	dialer *gomail.Dialer
	sender string
}

// NewSMTPMailer creates a mailer for the given relay.
func NewSMTPMailer(host string, port int, user, pass, sender string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		sender: sender,
	}
}

// SendVerificationOTP mails the account-verification code.
func (m *SMTPMailer) SendVerificationOTP(to, username, otp string) error {
	body := strings.NewReplacer(
		"{{username}}", username,
		"{{otp}}", otp,
	).Replace(verificationTemplate)
	return m.send(to, "Car Dealership - Verify Your Email", body)
}

// SendPasswordResetOTP mails the password-reset code.
func (m *SMTPMailer) SendPasswordResetOTP(to, otp string) error {
	body := strings.NewReplacer(
		"{{email}}", to,
		"{{otp}}", otp,
	).Replace(passwordResetTemplate)
	return m.send(to, "Car Dealership - Password Reset", body)
}

func (m *SMTPMailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// GenerateOTP returns a random numeric code of OTPLength digits.
func GenerateOTP() (string, error) {
	var sb strings.Builder
	for i := 0; i < OTPLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generate otp: %w", err)
		}
		sb.WriteString(n.String())
	}
	return sb.String(), nil
}
