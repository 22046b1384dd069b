// Package notify renders and delivers transactional email for proposal
// lifecycle events.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
)

// Message is one rendered email ready for delivery.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds delivery settings for the SMTP sender.
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// SMTPSender delivers messages over plain SMTP.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender builds an SMTP-backed sender.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	raw := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.cfg.From, msg.To, msg.Subject, msg.Body)
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{msg.To}, []byte(raw)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// LogSender writes messages to the log instead of delivering them. Used in
// development and when no SMTP host is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender builds a log-only sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("email suppressed",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}
