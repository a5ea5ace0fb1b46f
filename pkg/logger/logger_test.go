package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProductionIsJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "production")

	log.Debug("hidden")
	log.Info("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestExtraHandlersReceiveRecords(t *testing.T) {
	var main, extra bytes.Buffer
	log := New(&main, "local", slog.NewTextHandler(&extra, nil))

	log.With("request_id", "r1").Info("hello")

	assert.Contains(t, main.String(), "request_id=r1")
	assert.Contains(t, extra.String(), "request_id=r1")
}

func TestWithCtxFallsBackToBase(t *testing.T) {
	assert.Same(t, L, WithCtx(context.Background()))

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := InjectLogger(context.Background(), custom)
	assert.Same(t, custom, WithCtx(ctx))
}
