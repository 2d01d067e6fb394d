package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yamdb/yamdb/internal/config"
	"github.com/yamdb/yamdb/internal/models"
	"github.com/yamdb/yamdb/pkg/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testMailConfig() config.MailConfig {
	return config.MailConfig{
		Backend: config.MailBackendSMTP,
		Host:    "smtp.example.com",
		Port:    587,
		From:    "noreply@yamdb.test",
	}
}

func TestNew_PicksBackend(t *testing.T) {
	n, err := New(testMailConfig())
	require.NoError(t, err)
	assert.IsType(t, &SMTPNotifier{}, n)

	n, err = New(config.MailConfig{Backend: config.MailBackendLog})
	require.NoError(t, err)
	assert.IsType(t, &LogNotifier{}, n)

	_, err = New(config.MailConfig{Backend: "fax"})
	assert.Error(t, err)
}

func TestSMTPNotifier_BuildsMessage(t *testing.T) {
	n := NewSMTPNotifier(testMailConfig())
	var sent *email.Email
	n.send = func(e *email.Email) error {
		sent = e
		return nil
	}
	user := &models.User{Username: "reader", Email: "reader@example.com"}

	err := n.SendConfirmationCode(context.Background(), user, "abc-123")

	require.NoError(t, err)
	require.NotNil(t, sent)
	assert.Equal(t, "noreply@yamdb.test", sent.From)
	assert.Equal(t, []string{"reader@example.com"}, sent.To)
	assert.Equal(t, confirmationSubject, sent.Subject)
	assert.Contains(t, string(sent.Text), "abc-123")
	assert.Contains(t, string(sent.Text), "reader")
}

func TestSMTPNotifier_ReportsFailure(t *testing.T) {
	n := NewSMTPNotifier(testMailConfig())
	n.send = func(*email.Email) error { return errors.New("connection refused") }

	err := n.SendConfirmationCode(context.Background(), &models.User{Email: "x@example.com"}, "code")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSMTPNotifier_CancelledContext(t *testing.T) {
	n := NewSMTPNotifier(testMailConfig())
	called := false
	n.send = func(*email.Email) error {
		called = true
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := n.SendConfirmationCode(ctx, &models.User{Email: "x@example.com"}, "code")

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestLogNotifier_LogsCode(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	previous := logger.Log
	logger.Log = zap.New(core)
	defer func() { logger.Log = previous }()

	err := NewLogNotifier().SendConfirmationCode(context.Background(), &models.User{Username: "reader", Email: "r@example.com"}, "k1-deadbeef")

	require.NoError(t, err)
	entries := logs.FilterField(zap.String("confirmation_code", "k1-deadbeef")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Confirmation code issued", entries[0].Message)
}
