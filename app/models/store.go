package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is a seller's shop.
type Store struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Owner       string             `bson:"owner"         json:"owner"`
	Name        string             `bson:"name"          json:"name"`
	Address     string             `bson:"address"       json:"address"`
	Phone       string             `bson:"phone"         json:"phone"`
	Description string             `bson:"description"   json:"description"`
	Open        string             `bson:"open"          json:"open"`
	Close       string             `bson:"close"         json:"close"`
}

// Menu is a published menu board. The newest one per store is current.
type Menu struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	StoreID   string             `bson:"s_id"          json:"s_id"`
	FoodIDs   []string           `bson:"f_ids"         json:"f_ids"`
	Title     string             `bson:"title"         json:"title"`
	CreatedAt time.Time          `bson:"created_at"    json:"created_at"`
}
