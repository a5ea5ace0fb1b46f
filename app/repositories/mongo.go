package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/foodineye/pkg/apperr"
)

// MongoCollection implements Collection over a MongoDB collection.
type MongoCollection[T any] struct {
	col *mongo.Collection
}

func NewMongoCollection[T any](col *mongo.Collection) *MongoCollection[T] {
	return &MongoCollection[T]{col: col}
}

func (c *MongoCollection[T]) Create(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	res, err := c.col.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, mapErr(err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, apperr.E(apperr.KindInternal, "unexpected inserted id type", nil)
	}
	return oid, nil
}

func (c *MongoCollection[T]) FindByID(ctx context.Context, id string) (*T, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return c.findOne(ctx, bson.M{"_id": oid}, nil)
}

func (c *MongoCollection[T]) FindOne(ctx context.Context, field string, value any) (*T, error) {
	return c.findOne(ctx, bson.M{field: value}, nil)
}

func (c *MongoCollection[T]) FindAll(ctx context.Context) ([]T, error) {
	return c.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (c *MongoCollection[T]) FindAllByField(ctx context.Context, field string, value any) ([]T, error) {
	return c.find(ctx, bson.M{field: value}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (c *MongoCollection[T]) FindLatestByField(ctx context.Context, field string, value any, sortField string) (*T, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: sortField, Value: -1}, {Key: "_id", Value: -1}})
	return c.findOne(ctx, bson.M{field: value}, opts)
}

func (c *MongoCollection[T]) FindInRange(ctx context.Context, field string, from, to time.Time) ([]T, error) {
	filter := bson.M{field: bson.M{"$gte": from, "$lt": to}}
	return c.find(ctx, filter, options.Find().SetSort(bson.D{{Key: field, Value: 1}}))
}

func (c *MongoCollection[T]) UpdateByID(ctx context.Context, id string, fields bson.M) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	res, err := c.col.UpdateByID(ctx, oid, bson.M{"$set": fields})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("no document for id " + id)
	}
	return nil
}

func (c *MongoCollection[T]) UpdateFieldByID(ctx context.Context, id, field string, value any) error {
	return c.UpdateByID(ctx, id, bson.M{field: value})
}

func (c *MongoCollection[T]) UpdateByIDWhere(ctx context.Context, id string, match, fields bson.M) (bool, error) {
	oid, err := ParseID(id)
	if err != nil {
		return false, err
	}
	filter := bson.M{"_id": oid}
	for k, v := range match {
		filter[k] = v
	}
	res, err := c.col.UpdateOne(ctx, filter, bson.M{"$set": fields})
	if err != nil {
		return false, mapErr(err)
	}
	return res.MatchedCount > 0, nil
}

func (c *MongoCollection[T]) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*T, error) {
	var out T
	var err error
	if opts != nil {
		err = c.col.FindOne(ctx, filter, opts).Decode(&out)
	} else {
		err = c.col.FindOne(ctx, filter).Decode(&out)
	}
	if err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (c *MongoCollection[T]) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]T, error) {
	cur, err := c.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapErr(err)
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.E(apperr.KindNotFound, "document not found", err)
	case mongo.IsDuplicateKeyError(err):
		return apperr.E(apperr.KindDuplicate, "document already exists", err)
	default:
		return apperr.E(apperr.KindInternal, "database error", err)
	}
}
