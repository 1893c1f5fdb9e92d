// Package debug carries a structured logger in the context.
package debug

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"testing"

	"cdr.dev/slog"
	"cdr.dev/slog/sloggers/sloghuman"
	"cdr.dev/slog/sloggers/slogtest"
)

var _default = slog.Make(sloghuman.Sink(os.Stderr)).Named("netviz")

type loggerKey struct{}

// From returns the logger stored in ctx, or the process default.
func From(ctx context.Context) slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(slog.Logger); ok {
		return l
	}
	return _default
}

// With stores l in ctx.
func With(ctx context.Context, l slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// WithTB stores a logger that writes through t.
func WithTB(ctx context.Context, t testing.TB, opts *slogtest.Options) context.Context {
	return With(ctx, slogtest.Make(t, opts).Leveled(slog.LevelDebug))
}

// Writer stores a human readable logger writing to w at level.
// The standard library logger is redirected into it.
func Writer(ctx context.Context, w io.Writer, level slog.Level) context.Context {
	l := slog.Make(sloghuman.Sink(w)).Leveled(level)
	stdlog.SetOutput(slog.Stdlib(ctx, l, slog.LevelInfo).Writer())
	return With(ctx, l)
}

// Stderr is Writer on os.Stderr.
func Stderr(ctx context.Context, level slog.Level) context.Context {
	return Writer(ctx, os.Stderr, level)
}

// Discard stores a logger that drops everything.
func Discard(ctx context.Context) context.Context {
	return With(ctx, slog.Make())
}

// Named appends name to the logger in ctx.
func Named(ctx context.Context, name string) context.Context {
	return With(ctx, From(ctx).Named(name))
}

// ParseLevel maps a config level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func Debug(ctx context.Context, msg string, fields ...slog.Field) {
	slog.Helper()
	From(ctx).Debug(ctx, msg, fields...)
}

func Info(ctx context.Context, msg string, fields ...slog.Field) {
	slog.Helper()
	From(ctx).Info(ctx, msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...slog.Field) {
	slog.Helper()
	From(ctx).Warn(ctx, msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...slog.Field) {
	slog.Helper()
	From(ctx).Error(ctx, msg, fields...)
}
