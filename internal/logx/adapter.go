package logx

import "log/slog"

type slogAdapter struct {
	inner *slog.Logger
}

// NewSlogAdapter wraps an *slog.Logger in the Logger interface.
func NewSlogAdapter(inner *slog.Logger) Logger {
	return slogAdapter{inner: inner}
}

func (a slogAdapter) Debug(msg string, fields ...Field) { a.inner.Debug(msg, attrs(fields)...) }
func (a slogAdapter) Info(msg string, fields ...Field)  { a.inner.Info(msg, attrs(fields)...) }
func (a slogAdapter) Warn(msg string, fields ...Field)  { a.inner.Warn(msg, attrs(fields)...) }
func (a slogAdapter) Error(msg string, fields ...Field) { a.inner.Error(msg, attrs(fields)...) }

// With binds fields to every entry logged through the returned Logger.
func (a slogAdapter) With(fields ...Field) Logger {
	return slogAdapter{inner: a.inner.With(attrs(fields)...)}
}

// Sync is a no-op: slog handlers write through.
func (a slogAdapter) Sync() error { return nil }

func attrs(fields []Field) []any {
	out := make([]any, len(fields))
	for i, f := range fields {
		out[i] = slog.Any(f.Key, f.Value)
	}
	return out
}
