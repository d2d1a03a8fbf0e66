package mailer

import (
	"context"
	"errors"

	"github.com/cristianortiz/bidmaster/internal/notification/domain"
	"go.uber.org/zap"
)

var ErrNoRecipient = errors.New("mailer: email has no recipient address")

// LogMailer stands in for the email provider: it records every email in the
// log instead of delivering it.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, email domain.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if email.To == "" {
		return ErrNoRecipient
	}
	m.log.Info("Email queued",
		zap.String("kind", string(email.Kind)),
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
	)
	return nil
}
