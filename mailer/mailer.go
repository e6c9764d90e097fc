package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Purpose tells the recipient why a code was sent.
type Purpose string

const (
	PurposeVerification  Purpose = "verification"
	PurposePasswordReset Purpose = "password_reset"
)

func (p Purpose) Subject() string {
	if p == PurposePasswordReset {
		return "Your Password Reset Code"
	}
	return "Your Authentication Code"
}

// Sender delivers one-time codes to an email address.
type Sender interface {
	SendCode(ctx context.Context, to, code string, purpose Purpose) error
}

// LogSender is used when no SMTP server is configured. With RevealCodes set,
// reserved for development, the code goes out in a separate debug entry.
type LogSender struct {
	RevealCodes bool
	// Logger defaults to the standard logrus logger.
	Logger *logrus.Logger
}

func (s LogSender) SendCode(_ context.Context, to, code string, purpose Purpose) error {
	logger := s.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	entry := logger.WithFields(logrus.Fields{"to": to, "purpose": purpose})
	entry.Info("smtp not configured, code not emailed")
	if s.RevealCodes {
		entry.WithField("code", code).Debug("one-time code")
	}
	return nil
}
