// Package logger provides a structured, levelled logger built on log/slog.
//
// WithCtx returns the request-scoped logger injected by the Logger
// middleware, so every line from a handler carries the request_id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("food image replaced", "food_id", id)
//	// → time=... level=INFO msg="food image replaced" request_id=a1b2c3d4 food_id=...
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// L is the base logger. Setup replaces it; until then it writes text to
// stdout.
var L = slog.New(slog.NewTextHandler(os.Stdout, nil))

// New builds a logger for env: JSON at INFO in production, text at DEBUG
// elsewhere. Extra handlers (e.g. the Mongo sink) receive every record too.
func New(w io.Writer, env string, extra ...slog.Handler) *slog.Logger {
	var handler slog.Handler
	switch strings.ToLower(env) {
	case "production", "prod":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	if len(extra) > 0 {
		handler = NewMultiHandler(append([]slog.Handler{handler}, extra...)...)
	}
	return slog.New(handler)
}

// Setup installs a stdout logger for env as L and as the slog default.
func Setup(env string, extra ...slog.Handler) *slog.Logger {
	L = New(os.Stdout, env, extra...)
	slog.SetDefault(L)
	return L
}

// ── Context-aware logger ─────────────────────────────────────────────────────

type ctxKey struct{}

// WithCtx returns the logger stored in ctx by InjectLogger, or L.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
			return log
		}
	}
	return L
}

// InjectLogger stores a *slog.Logger (pre-tagged with request_id) into ctx.
// Called by the Logger middleware.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// Short-hand helpers on the base logger.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
