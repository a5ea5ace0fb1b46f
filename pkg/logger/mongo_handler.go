package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoQueueSize = 4096
	mongoBatchSize = 50
	mongoDrainTick = 2 * time.Second
)

// LogDocument is one log record as stored in MongoDB. The ids most often
// searched for are lifted out of Attrs so they can be indexed.
type LogDocument struct {
	Time      time.Time `bson:"time"`
	Level     string    `bson:"level"`
	Msg       string    `bson:"msg"`
	RequestID string    `bson:"request_id,omitempty"`
	UserID    string    `bson:"u_id,omitempty"`
	StoreID   string    `bson:"s_id,omitempty"`
	Attrs     bson.M    `bson:"attrs,omitempty"`
}

// MongoOptions configures NewMongoHandler.
type MongoOptions struct {
	Level slog.Leveler
	// Retention, when positive, adds a TTL index so old records expire.
	Retention time.Duration
}

// MongoHandler is an slog.Handler that batches records into a collection
// from a background goroutine. Handle never blocks: when the queue is full
// the record is dropped and counted.
type MongoHandler struct {
	col    *mongo.Collection
	level  slog.Leveler
	queue  chan LogDocument
	state  *sinkState
	attrs  []slog.Attr
	prefix string
}

type sinkState struct {
	done    chan struct{}
	closed  chan struct{}
	once    sync.Once
	dropped atomic.Int64
}

// NewMongoHandler starts a sink writing into col. It shares the caller's
// client; Close flushes but does not disconnect.
func NewMongoHandler(ctx context.Context, col *mongo.Collection, opts MongoOptions) *MongoHandler {
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}

	ensureLogIndexes(ctx, col, opts.Retention)

	h := newMongoHandler(col, opts.Level)
	go h.drainLoop()
	return h
}

func newMongoHandler(col *mongo.Collection, level slog.Leveler) *MongoHandler {
	return &MongoHandler{
		col:   col,
		level: level,
		queue: make(chan LogDocument, mongoQueueSize),
		state: &sinkState{done: make(chan struct{}), closed: make(chan struct{})},
	}
}

func ensureLogIndexes(ctx context.Context, col *mongo.Collection, retention time.Duration) {
	byTime := options.Index().SetName("log_time")
	if retention > 0 {
		byTime.SetExpireAfterSeconds(int32(retention / time.Second))
	}
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "time", Value: -1}}, Options: byTime},
		{Keys: bson.D{{Key: "request_id", Value: 1}}, Options: options.Index().SetName("log_request").SetSparse(true)},
	})
	if err != nil {
		L.Warn("log sink indexes not created", "collection", col.Name(), "error", err)
	}
}

func (h *MongoHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *MongoHandler) Handle(_ context.Context, r slog.Record) error {
	select {
	case h.queue <- h.document(r):
	default:
		h.state.dropped.Add(1)
	}
	return nil
}

// document flattens r and the handler's attrs into a LogDocument.
func (h *MongoHandler) document(r slog.Record) LogDocument {
	doc := LogDocument{Time: r.Time, Level: r.Level.String(), Msg: r.Message, Attrs: bson.M{}}
	for _, a := range h.attrs {
		doc.put("", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		doc.put(h.prefix, a)
		return true
	})
	if len(doc.Attrs) == 0 {
		doc.Attrs = nil
	}
	return doc
}

func (d *LogDocument) put(prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, ga := range v.Group() {
			d.put(prefix+a.Key+".", ga)
		}
		return
	}
	key := prefix + a.Key
	switch key {
	case "request_id":
		d.RequestID = v.String()
	case "u_id":
		d.UserID = v.String()
	case "s_id":
		d.StoreID = v.String()
	default:
		d.Attrs[key] = attrValue(v)
	}
}

// attrValue keeps BSON-friendly kinds and stringifies the rest so one odd
// attribute cannot fail a whole batch.
func attrValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return int64(v.Uint64())
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindTime:
		return v.Time()
	case slog.KindDuration:
		return v.Duration().String()
	default:
		return fmt.Sprint(v.Any())
	}
}

func (h *MongoHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	c.attrs = append(c.attrs, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		c.attrs = append(c.attrs, a)
	}
	return &c
}

func (h *MongoHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}

// Dropped returns how many records were discarded because the queue was
// full.
func (h *MongoHandler) Dropped() int64 { return h.state.dropped.Load() }

func (h *MongoHandler) drainLoop() {
	defer close(h.state.closed)
	ticker := time.NewTicker(mongoDrainTick)
	defer ticker.Stop()

	batch := make([]any, 0, mongoBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// A failed insert cannot be logged through this sink.
		_, _ = h.col.InsertMany(ctx, batch)
		batch = batch[:0]
	}

	for {
		select {
		case doc := <-h.queue:
			batch = append(batch, doc)
			if len(batch) >= mongoBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-h.state.done:
			for len(h.queue) > 0 {
				batch = append(batch, <-h.queue)
				if len(batch) >= mongoBatchSize {
					flush()
				}
			}
			flush()
			return
		}
	}
}

// Close flushes pending records and waits for the drain loop. Safe to call
// more than once.
func (h *MongoHandler) Close() {
	h.state.once.Do(func() { close(h.state.done) })
	<-h.state.closed
}

// MultiHandler fans each record out to several handlers.
type MultiHandler struct {
	handlers []slog.Handler
}

func NewMultiHandler(hs ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: hs}
}

func (m *MultiHandler) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []string
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("logger: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: hs}
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithGroup(name)
	}
	return &MultiHandler{handlers: hs}
}
