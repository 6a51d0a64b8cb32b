// Package logger provides opinionated logging capabilities for quire.
//
// Every component takes a *slog.Logger. The CLI builds one with the pretty
// charmbracelet/log handler; `quire serve` can switch to JSON.
package logger

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type config struct {
	level  slog.Level
	pretty bool
	json   bool
	writer io.Writer
	attrs  []any
}

// New creates a *slog.Logger. The handler is chosen by the options:
// charmbracelet/log when pretty, slog JSON when json, slog text otherwise.
func New(opts ...Option) *slog.Logger {
	c := &config{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(c)
	}

	var w io.Writer = os.Stdout
	if c.writer != nil {
		w = c.writer
	}

	var h slog.Handler
	switch {
	case c.pretty:
		h = charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmLevel(c.level),
			ReportTimestamp: true,
		})
	case c.json:
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: c.level})
	default:
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.level})
	}

	l := slog.New(h)
	if len(c.attrs) > 0 {
		l = l.With(c.attrs...)
	}
	return l
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func charmLevel(level slog.Level) charmlog.Level {
	switch {
	case level <= slog.LevelDebug:
		return charmlog.DebugLevel
	case level <= slog.LevelInfo:
		return charmlog.InfoLevel
	case level <= slog.LevelWarn:
		return charmlog.WarnLevel
	default:
		return charmlog.ErrorLevel
	}
}
