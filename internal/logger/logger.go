package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"emall-backend/internal/config"

	"github.com/rs/zerolog"
)

// New builds the process logger. Format "console" gives human readable
// output, anything else writes JSON lines.
func New(cfg config.Log, env config.Environment) zerolog.Logger {
	return NewWithWriter(cfg, env, os.Stdout)
}

func NewWithWriter(cfg config.Log, env config.Environment, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := w
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("env", env.Name).
		Logger()
}
