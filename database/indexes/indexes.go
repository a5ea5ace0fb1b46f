// Package indexes holds the MongoDB index definitions. Each definition file
// calls Register from init(); EnsureAll creates whatever is missing.
//
// Run via CLI: foodineye index:ensure
package indexes

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
)

// Spec names the indexes one collection needs.
type Spec struct {
	Collection string
	Models     []mongo.IndexModel
}

var (
	mu    sync.Mutex
	specs []Spec
)

// Register adds a collection's indexes to the registry.
func Register(collection string, models ...mongo.IndexModel) {
	mu.Lock()
	defer mu.Unlock()
	specs = append(specs, Spec{Collection: collection, Models: models})
}

// All returns a copy of every registered spec in registration order.
func All() []Spec {
	mu.Lock()
	defer mu.Unlock()
	out := make([]Spec, len(specs))
	copy(out, specs)
	return out
}

// EnsureAll creates every registered index. CreateMany is idempotent for
// identical definitions. Returns the names created, per collection.
func EnsureAll(ctx context.Context, db *mongo.Database) (map[string][]string, error) {
	created := map[string][]string{}
	for _, s := range All() {
		names, err := db.Collection(s.Collection).Indexes().CreateMany(ctx, s.Models)
		if err != nil {
			return created, fmt.Errorf("indexes: %s: %w", s.Collection, err)
		}
		created[s.Collection] = names
	}
	return created, nil
}
