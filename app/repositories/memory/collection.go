// Package memory is an in-process document store with the same contract as
// the MongoDB collections. Documents round-trip through BSON so field names
// and update semantics match the real store.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/foodineye/pkg/apperr"
)

// Collection stores documents of type T keyed by ObjectID.
type Collection[T any] struct {
	mu     sync.RWMutex
	docs   map[primitive.ObjectID]bson.M
	order  []primitive.ObjectID
	unique []string
}

// NewCollection returns an empty collection. Fields listed in unique are
// enforced like a unique index.
func NewCollection[T any](unique ...string) *Collection[T] {
	return &Collection[T]{docs: map[primitive.ObjectID]bson.M{}, unique: unique}
}

func (c *Collection[T]) Create(_ context.Context, doc *T) (primitive.ObjectID, error) {
	m, err := toM(doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id := primitive.NewObjectID()
	m["_id"] = id

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, field := range c.unique {
		if m[field] == nil {
			continue
		}
		for _, other := range c.docs {
			if equal(other[field], m[field]) {
				return primitive.NilObjectID, apperr.Duplicate(fmt.Sprintf("duplicate %s", field))
			}
		}
	}
	c.docs[id] = m
	c.order = append(c.order, id)
	return id, nil
}

func (c *Collection[T]) FindByID(_ context.Context, id string) (*T, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	m, ok := c.docs[oid]
	m = maps.Clone(m)
	c.mu.RUnlock()
	if !ok {
		return nil, apperr.NotFound("document not found")
	}
	return fromM[T](m)
}

func (c *Collection[T]) FindOne(_ context.Context, field string, value any) (*T, error) {
	matches := c.filter(func(m bson.M) bool { return equal(m[field], value) })
	if len(matches) == 0 {
		return nil, apperr.NotFound("document not found")
	}
	return fromM[T](matches[0])
}

func (c *Collection[T]) FindAll(_ context.Context) ([]T, error) {
	return decodeAll[T](c.filter(func(bson.M) bool { return true }))
}

func (c *Collection[T]) FindAllByField(_ context.Context, field string, value any) ([]T, error) {
	return decodeAll[T](c.filter(func(m bson.M) bool { return equal(m[field], value) }))
}

func (c *Collection[T]) FindLatestByField(_ context.Context, field string, value any, sortField string) (*T, error) {
	matches := c.filter(func(m bson.M) bool { return equal(m[field], value) })
	if len(matches) == 0 {
		return nil, apperr.NotFound("document not found")
	}
	// Stable sort keeps insertion order for ties; the last one wins.
	sort.SliceStable(matches, func(i, j int) bool {
		return less(matches[i][sortField], matches[j][sortField])
	})
	return fromM[T](matches[len(matches)-1])
}

func (c *Collection[T]) FindInRange(_ context.Context, field string, from, to time.Time) ([]T, error) {
	lo, hi := primitive.NewDateTimeFromTime(from), primitive.NewDateTimeFromTime(to)
	matches := c.filter(func(m bson.M) bool {
		dt, ok := m[field].(primitive.DateTime)
		return ok && dt >= lo && dt < hi
	})
	sort.SliceStable(matches, func(i, j int) bool { return less(matches[i][field], matches[j][field]) })
	return decodeAll[T](matches)
}

func (c *Collection[T]) UpdateByID(_ context.Context, id string, fields bson.M) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	// Normalise values through BSON so reads see what Mongo would store.
	set, err := toM(fields)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.docs[oid]
	if !ok {
		return apperr.NotFound("no document for id " + id)
	}
	for k, v := range set {
		m[k] = v
	}
	return nil
}

func (c *Collection[T]) UpdateFieldByID(ctx context.Context, id, field string, value any) error {
	return c.UpdateByID(ctx, id, bson.M{field: value})
}

func (c *Collection[T]) UpdateByIDWhere(_ context.Context, id string, match, fields bson.M) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}
	want, err := toM(match)
	if err != nil {
		return false, err
	}
	set, err := toM(fields)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.docs[oid]
	if !ok {
		return false, nil
	}
	for k, v := range want {
		if !equal(m[k], v) {
			return false, nil
		}
	}
	for k, v := range set {
		m[k] = v
	}
	return true, nil
}

// Len returns the number of stored documents.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// filter returns copies of the matching documents. Updates replace
// top-level values and never mutate them in place, so a shallow copy taken
// under the lock is safe to read after it is released.
func (c *Collection[T]) filter(keep func(bson.M) bool) []bson.M {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []bson.M
	for _, id := range c.order {
		if m := c.docs[id]; keep(m) {
			out = append(out, maps.Clone(m))
		}
	}
	return out
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.E(apperr.KindValidation, "The id format is not valid. Please check", err)
	}
	return oid, nil
}

func toM(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, apperr.E(apperr.KindInternal, "encode document", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, apperr.E(apperr.KindInternal, "encode document", err)
	}
	return m, nil
}

func fromM[T any](m bson.M) (*T, error) {
	raw, err := bson.Marshal(m)
	if err != nil {
		return nil, apperr.E(apperr.KindInternal, "decode document", err)
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, apperr.E(apperr.KindInternal, "decode document", err)
	}
	return &out, nil
}

func decodeAll[T any](ms []bson.M) ([]T, error) {
	out := make([]T, 0, len(ms))
	for _, m := range ms {
		doc, err := fromM[T](m)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, nil
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func less(a, b any) bool {
	switch x := a.(type) {
	case primitive.DateTime:
		y, _ := b.(primitive.DateTime)
		return x < y
	case int32:
		y, _ := b.(int32)
		return x < y
	case int64:
		y, _ := b.(int64)
		return x < y
	case float64:
		y, _ := b.(float64)
		return x < y
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}
