package mailer

import (
	"log/slog"

	gomail "gopkg.in/gomail.v2"

	internal "github.com/stonelib/library-management/internal"
)

// Mailer sends notification mail over SMTP. Callers treat it as
// fire-and-forget, delivery failures are logged and swallowed.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	logger *slog.Logger
}

func New(cfg internal.MailConfig, logger *slog.Logger) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("failed to send mail", "error", err, "to", to, "subject", subject)
		return err
	}

	m.logger.Debug("mail sent", "to", to, "subject", subject)
	return nil
}
