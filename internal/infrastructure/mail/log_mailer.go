// Package mail contains the transports that deliver password reset links.
package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// LogMailer writes reset links to the log instead of sending them. It is the
// development transport.
type LogMailer struct {
	logger zerolog.Logger
}

func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Deliver(ctx context.Context, email, resetLink string) error {
	m.logger.Info().Str("to", email).Str("reset_link", resetLink).Msg("password reset mail")
	return nil
}
