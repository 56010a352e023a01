package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/verifact"
	"github.com/sirupsen/logrus"
)

// SMTPConfig addresses the relay. Username may be empty for relays that
// accept unauthenticated mail.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c SMTPConfig) validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return errors.New("smtp host required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("smtp port out of range")
	}
	if strings.TrimSpace(c.From) == "" {
		return errors.New("smtp from address required")
	}
	return nil
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender sends notifications as plain-text email.
type SMTPSender struct {
	config   SMTPConfig
	auth     smtp.Auth
	logger   logrus.FieldLogger
	now      func() time.Time
	sendMail sendMailFunc
}

var _ verifact.Notifier = (*SMTPSender)(nil)

func NewSMTPSender(cfg SMTPConfig, logger logrus.FieldLogger) (*SMTPSender, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &SMTPSender{
		config:   cfg,
		logger:   logger,
		now:      time.Now,
		sendMail: smtp.SendMail,
	}
	if cfg.Username != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return s, nil
}

// Notify renders n and hands it to the relay. It does not retry.
func (s *SMTPSender) Notify(ctx context.Context, n verifact.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := Render(n)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	raw := buildMessage(s.config.From, n.To, msg, s.now())
	if err := s.sendMail(addr, s.auth, s.config.From, []string{n.To}, raw); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"kind": string(n.Kind),
		"to":   n.To,
	}).Debug("notification sent")
	return nil
}

func buildMessage(from, to string, msg Message, now time.Time) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}
