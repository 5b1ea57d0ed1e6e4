package email

import (
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/campuspay/studentbank/internal/pkg/logger"
)

// SMTPConfig holds mail server settings
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
}

// Service sends transactional mail
type Service struct {
	config SMTPConfig
}

// NewService creates a new email service
func NewService(config SMTPConfig) *Service {
	return &Service{config: config}
}

// configured reports whether real SMTP credentials are present
func (s *Service) configured() bool {
	return s.config.Host != "" && s.config.Username != "" && s.config.Password != ""
}

// SendOTP mails a one-time login code. Without SMTP credentials the code is
// logged instead so local development works without a mail server.
func (s *Service) SendOTP(to, code string) error {
	if !s.configured() {
		logger.Warn().
			Str("to", to).
			Str("code", code).
			Msg("SMTP not configured, one-time code logged instead of mailed")
		return nil
	}

	subject := "Your login code"
	body := fmt.Sprintf(`<html><body>
		<p>Your one-time login code is:</p>
		<h2 style="letter-spacing: 4px;">%s</h2>
		<p>The code expires in a few minutes. If you did not request it, ignore this message.</p>
	</body></html>`, code)

	return s.sendHTMLEmail(to, subject, body)
}

func (s *Service) sendHTMLEmail(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	from := fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)

	msg := []byte(
		"From: " + from + "\r\n" +
			"To: " + to + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n" +
			"\r\n" + body)

	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	if !s.config.UseTLS {
		if err := smtp.SendMail(addr, auth, s.config.FromEmail, []string{to}, msg); err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err := client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open message body: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close message body: %w", err)
	}

	return client.Quit()
}
