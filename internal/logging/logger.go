// Package logging is the structured logger every fintrack component receives.
// Components never touch log/slog directly.
package logging

import "context"

// Logger takes a message plus alternating key and value arguments:
//
//	log.Info(ctx, "account deleted", "user_id", callerID, "items", n)
//
// Children made with With carry their pairs on every line, which is how each
// component tags its output with "module".
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) Logger
}
