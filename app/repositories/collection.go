// Package repositories is the data-access layer. Every repository is a thin
// typed wrapper over a Collection, which is either a MongoDB collection or
// the in-memory implementation in the memory subpackage.
package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/foodineye/pkg/apperr"
)

// Collection is the document-store contract the repositories build on.
// Ids are hex strings; a malformed id is a ValidationError and a missing
// document a NotFoundError. Create reports unique-index violations as
// DuplicateError. UpdateByIDWhere applies fields only while the document
// still matches match and reports whether it did.
type Collection[T any] interface {
	Create(ctx context.Context, doc *T) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id string) (*T, error)
	FindOne(ctx context.Context, field string, value any) (*T, error)
	FindAll(ctx context.Context) ([]T, error)
	FindAllByField(ctx context.Context, field string, value any) ([]T, error)
	FindLatestByField(ctx context.Context, field string, value any, sortField string) (*T, error)
	FindInRange(ctx context.Context, field string, from, to time.Time) ([]T, error)
	UpdateByID(ctx context.Context, id string, fields bson.M) error
	UpdateFieldByID(ctx context.Context, id, field string, value any) error
	UpdateByIDWhere(ctx context.Context, id string, match, fields bson.M) (bool, error)
}

// ParseID converts a hex id, rejecting malformed input.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.E(apperr.KindValidation, "The id format is not valid. Please check", err)
	}
	return oid, nil
}
