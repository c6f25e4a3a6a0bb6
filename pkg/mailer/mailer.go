// Package mailer sends account verification mail over SMTP.
package mailer

import (
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"time"

	mail "gopkg.in/mail.v2"
)

// Sender delivers verification codes; swapped for a no-op in tests and
// dev mode.
type Sender interface {
	SendVerification(to, code string) error
}

// SMTPConfig carries dialer settings, usually read from the environment.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	SSL      bool
}

// FromEnv builds the SMTP config from SMTP_* variables. Returns ok=false
// when no host is configured.
func FromEnv() (SMTPConfig, bool) {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return SMTPConfig{}, false
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	return SMTPConfig{
		Host:     host,
		Port:     port,
		Username: os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASS"),
		From:     os.Getenv("SMTP_FROM"),
		SSL:      os.Getenv("SMTP_SSL") == "true",
	}, true
}

type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) SendVerification(to, code string) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Verify your account")
	m.SetBody("text/plain", fmt.Sprintf("Your verification code is %s", code))

	d := mail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: s.cfg.Host}
	d.Timeout = 15 * time.Second
	if s.cfg.SSL {
		d.SSL = true
	} else {
		d.StartTLSPolicy = mail.OpportunisticStartTLS
	}

	done := make(chan error, 1)
	go func() {
		done <- d.DialAndSend(m)
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-time.After(15 * time.Second):
		return fmt.Errorf("timeout sending email")
	}
}

// NopSender drops mail; used when SMTP is not configured.
type NopSender struct{}

func (NopSender) SendVerification(string, string) error { return nil }
