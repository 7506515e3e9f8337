package utils

import (
	"fmt"
	"net/smtp"
	"os"
)

// SendMail sends a plain-text email through the configured SMTP relay.
func SendMail(emailTo, subject, body string) error {
	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		os.Getenv("FROM_EMAIL"),
		emailTo,
		subject,
		body,
	)

	auth := smtp.PlainAuth(
		"",
		os.Getenv("FROM_EMAIL"),
		os.Getenv("FROM_EMAIL_PASSWORD"),
		os.Getenv("FROM_EMAIL_SMTP"),
	)

	if err := smtp.SendMail(os.Getenv("SMTP_ADDRESS"), auth, os.Getenv("FROM_EMAIL"), []string{emailTo}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendVerificationCodeEmail notifies the buyer of the COD hand-off code for
// a freshly placed (or regenerated) order.
func SendVerificationCodeEmail(emailTo string, orderId uint, code string) error {
	subject := fmt.Sprintf("Delivery code for order #%d", orderId)
	body := fmt.Sprintf(
		"Your cash-on-delivery verification code for order #%d is %s.\n\nShare it with the delivery agent only at hand-off.",
		orderId, code,
	)
	return SendMail(emailTo, subject, body)
}
