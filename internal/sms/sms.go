// Package sms abstracts the SMS delivery provider. The real gateway is an
// external collaborator; development and tests run against the logging
// implementation.
package sms

import (
	"context"
	"log/slog"
)

// Gateway delivers one-time codes to phones
type Gateway interface {
	SendOTP(ctx context.Context, phone, code string) error
}

// LogGateway writes codes to the log instead of sending them
type LogGateway struct {
	log *slog.Logger
}

// NewLogGateway creates an SMS gateway that only logs
func NewLogGateway(log *slog.Logger) *LogGateway {
	return &LogGateway{log: log}
}

// SendOTP logs the code at debug level
func (g *LogGateway) SendOTP(ctx context.Context, phone, code string) error {
	g.log.Debug("otp dispatch (log gateway)", "phone", phone, "code", code)
	return nil
}
