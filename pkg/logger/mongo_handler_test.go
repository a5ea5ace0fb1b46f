package logger

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func record(msg string, attrs ...any) slog.Record {
	r := slog.NewRecord(time.Unix(1700000000, 0), slog.LevelWarn, msg, 0)
	r.Add(attrs...)
	return r
}

func TestMongoDocumentPromotesIDs(t *testing.T) {
	h := newMongoHandler(nil, slog.LevelInfo).
		WithAttrs([]slog.Attr{slog.String("request_id", "req-1")}).(*MongoHandler)

	doc := h.document(record("order placed", "u_id", "u1", "s_id", "s1", "total", 18000, "error", errors.New("boom")))

	assert.Equal(t, "WARN", doc.Level)
	assert.Equal(t, "req-1", doc.RequestID)
	assert.Equal(t, "u1", doc.UserID)
	assert.Equal(t, "s1", doc.StoreID)
	assert.Equal(t, int64(18000), doc.Attrs["total"])
	assert.Equal(t, "boom", doc.Attrs["error"])
}

func TestMongoDocumentGroupsPrefixKeys(t *testing.T) {
	h := newMongoHandler(nil, slog.LevelInfo).WithGroup("http").(*MongoHandler)

	doc := h.document(record("done", "status", 200, slog.Group("timing", slog.Duration("total", time.Second))))

	assert.Equal(t, int64(200), doc.Attrs["http.status"])
	assert.Equal(t, "1s", doc.Attrs["http.timing.total"])
}

func TestMongoHandlerDropsWhenFull(t *testing.T) {
	h := newMongoHandler(nil, slog.LevelInfo)
	h.queue = make(chan LogDocument, 1)

	assert.NoError(t, h.Handle(context.Background(), record("a")))
	assert.NoError(t, h.Handle(context.Background(), record("b")))
	assert.Equal(t, int64(1), h.Dropped())
}

func TestMongoHandlerLevel(t *testing.T) {
	h := newMongoHandler(nil, slog.LevelWarn)
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}
