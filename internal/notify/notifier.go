// Package notify delivers confirmation codes to users.
package notify

import (
	"context"
	"fmt"

	"github.com/yamdb/yamdb/internal/config"
	"github.com/yamdb/yamdb/internal/models"
)

const confirmationSubject = "YaMDb confirmation code"

// Notifier sends a confirmation code to the account's email address.
// Errors are reported to the caller; nothing is retried.
type Notifier interface {
	SendConfirmationCode(ctx context.Context, user *models.User, code string) error
}

// New picks the notifier for the configured mail backend.
func New(cfg config.MailConfig) (Notifier, error) {
	switch cfg.Backend {
	case config.MailBackendSMTP:
		return NewSMTPNotifier(cfg), nil
	case config.MailBackendLog:
		return NewLogNotifier(), nil
	}
	return nil, fmt.Errorf("unsupported mail backend %q", cfg.Backend)
}

func confirmationBody(user *models.User, code string) string {
	return fmt.Sprintf(
		"Hello %s,\n\nyour confirmation code is: %s\n\nExchange it for an access token at /api/v1/auth/token.\n",
		user.Username, code,
	)
}
