package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/peers/internal/pkg/eventtime"
)

// Sender delivers student-verification codes
type Sender interface {
	SendVerificationCode(ctx context.Context, to, code string, ttl time.Duration) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender implements Sender over plain SMTP with STARTTLS when offered
type SMTPSender struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewSMTPSender creates a Sender. Without credentials it only logs the code.
func NewSMTPSender(config SMTPConfig, logger zerolog.Logger) *SMTPSender {
	return &SMTPSender{config: config, logger: logger.With().Str("component", "email").Logger()}
}

func (s *SMTPSender) configured() bool {
	return s.config.Host != "" && s.config.Username != "" && s.config.Password != ""
}

// SendVerificationCode emails the code to the student's university address
func (s *SMTPSender) SendVerificationCode(ctx context.Context, to, code string, ttl time.Duration) error {
	if !s.configured() {
		s.logger.Warn().
			Str("to", to).
			Str("code", code).
			Msg("SMTP credentials not configured - verification code not sent")
		return nil
	}

	subject := "Your Peers verification code"
	body := verificationBody(code, ttl)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.send(to, subject, body); err != nil {
		return fmt.Errorf("failed to send verification code: %w", err)
	}
	s.logger.Info().Str("to", to).Msg("Verification code sent")
	return nil
}

func verificationBody(code string, ttl time.Duration) string {
	var b strings.Builder
	b.WriteString("Hi,\r\n\r\n")
	b.WriteString("Use the code below to verify that you are a student:\r\n\r\n")
	b.WriteString("    " + code + "\r\n\r\n")
	b.WriteString("The code expires in " + eventtime.FormatDuration(int(ttl.Minutes())) + ".\r\n")
	b.WriteString("If you did not request it, ignore this email.\r\n")
	return b.String()
}

func (s *SMTPSender) send(to, subject, body string) error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	msg := strings.Join([]string{
		"From: " + s.config.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.config.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := client.Mail(s.config.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
