package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/yamdb/yamdb/internal/config"
	"github.com/yamdb/yamdb/internal/models"
	"github.com/yamdb/yamdb/pkg/logger"
	"go.uber.org/zap"
)

type SMTPNotifier struct {
	cfg  config.MailConfig
	send func(e *email.Email) error
}

func NewSMTPNotifier(cfg config.MailConfig) *SMTPNotifier {
	n := &SMTPNotifier{cfg: cfg}
	n.send = n.deliver
	return n
}

func (n *SMTPNotifier) SendConfirmationCode(ctx context.Context, user *models.User, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = n.cfg.From
	e.To = []string{user.Email}
	e.Subject = confirmationSubject
	e.Text = []byte(confirmationBody(user, code))

	start := time.Now()
	if err := n.send(e); err != nil {
		logger.Log.Error("Failed to send confirmation email",
			zap.String("email", user.Email),
			zap.String("smtp_host", n.cfg.Host),
			zap.Error(err),
		)
		return fmt.Errorf("send confirmation email: %w", err)
	}

	logger.Log.Info("Confirmation email sent",
		zap.String("email", user.Email),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// deliver picks implicit TLS on 465, STARTTLS on 587 and plain SMTP otherwise.
func (n *SMTPNotifier) deliver(e *email.Email) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	tlsConfig := &tls.Config{
		ServerName: n.cfg.Host,
		MinVersion: tls.VersionTLS12,
	}

	switch n.cfg.Port {
	case 465:
		return e.SendWithTLS(addr, auth, tlsConfig)
	case 587:
		return e.SendWithStartTLS(addr, auth, tlsConfig)
	default:
		return e.Send(addr, auth)
	}
}
