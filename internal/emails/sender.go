package emails

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/brewbuddy/backend/config"
)

// Sender delivers notification emails over SMTP. When no SMTP host is
// configured it logs the message instead of sending, which keeps local
// development working without a mail server.
type Sender struct {
	cfg    config.EmailConfig
	logger *zap.Logger
}

// NewSender creates an SMTP sender.
func NewSender(cfg config.EmailConfig, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{cfg: cfg, logger: logger}
}

// Send delivers one email.
func (s *Sender) Send(to, subject, body string) error {
	if s.cfg.SMTPHost == "" {
		s.logger.Info("smtp not configured, logging email instead",
			zap.String("to", to), zap.String("subject", subject))
		return nil
	}

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s <%s>", s.cfg.FromName, s.cfg.FromAddress),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, s.cfg.FromAddress, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
