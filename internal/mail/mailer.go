// Package mail sends outbound transactional email. Only the password-reset
// flow uses it; the HTTP response never reflects delivery failures.
package mail

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer sends a password reset link to a recipient.
type Mailer interface {
	SendPasswordReset(to, resetLink string) error
}

// SMTPMailer delivers mail over SMTP with implicit TLS.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPMailer creates an SMTPMailer.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, username: username, password: password, from: from}
}

// SendPasswordReset sends the reset link email.
func (m *SMTPMailer) SendPasswordReset(to, resetLink string) error {
	subject := "Password Reset Request"
	body := strings.Join([]string{
		"A password reset was requested for your account.",
		"",
		"Open the link below to choose a new password:",
		resetLink,
		"",
		"The link expires in 15 minutes. If you did not request this, ignore this message.",
	}, "\r\n")

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.from, to, subject, body)
	return m.send(to, []byte(msg))
}

func (m *SMTPMailer) send(to string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.host})
	if err != nil {
		return fmt.Errorf("smtp dial failed: %w", err)
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake failed: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}
	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("smtp MAIL failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp RCPT failed: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("smtp write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close failed: %w", err)
	}
	return client.Quit()
}
