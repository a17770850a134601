package identity

import (
	"context"

	"github.com/ridemyway/ridemyway/logger"
	"go.uber.org/zap"
)

// Mailer delivers the email verification link to a new user.
type Mailer interface {
	SendVerification(ctx context.Context, name, email, link string) error
}

// LogMailer writes the verification link to the service log instead of
// sending mail.
type LogMailer struct{}

func (LogMailer) SendVerification(ctx context.Context, name, email, link string) error {
	logger.Log.Info("verification email",
		zap.String("name", name),
		zap.String("email", email),
		zap.String("link", link),
	)
	return nil
}
