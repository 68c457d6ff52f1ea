// Package logger provides the zerolog constructor shared by the service
// binaries.
package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// New returns a logger writing JSON lines to stdout, tagged with the
// service name. The level defaults to info and can be overridden through
// ECHONOTE_LOG_LEVEL (trace, debug, info, warn, error); an unparseable
// value falls back to info rather than failing startup.
func New(serviceName string) zerolog.Logger {
	level := zerolog.InfoLevel
	if s := os.Getenv("ECHONOTE_LOG_LEVEL"); s != "" {
		if l, err := zerolog.ParseLevel(s); err == nil && l != zerolog.NoLevel {
			level = l
		}
	}

	return zerolog.New(os.Stdout).
		Level(level).
		With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}
