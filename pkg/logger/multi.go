package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

// fanout hands every record to each handler that accepts its level. A
// failing handler does not stop the others.
type fanout []slog.Handler

// Multi returns a logger that writes every record through the handlers of
// all given loggers.
func Multi(loggers ...*slog.Logger) *slog.Logger {
	hs := make(fanout, 0, len(loggers))
	for _, l := range loggers {
		hs = append(hs, l.Handler())
	}
	return slog.New(hs)
}

// Tee keeps console and adds JSON records written to file, tagged with
// service=quire. It backs `quire serve --log-file`.
func Tee(console *slog.Logger, file io.Writer, debug bool) *slog.Logger {
	return Multi(console, New(
		WithDebug(debug),
		WithJSON(true),
		WithWriter(file),
		WithAttrs("service", "quire"),
	))
}

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
