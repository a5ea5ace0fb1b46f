package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Food is one dish sold by a store. ImageKey is nil until an image is
// uploaded and always names a file in the image store when set.
type Food struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	StoreID     string             `bson:"s_id"          json:"s_id"`
	Name        string             `bson:"name"          json:"name"`
	Price       int                `bson:"price"         json:"price"`
	Description string             `bson:"description"   json:"description"`
	Category    string             `bson:"category"      json:"category"`
	SoldOut     bool               `bson:"soldout"       json:"soldout"`
	ImageKey    *string            `bson:"img_key"       json:"img_key"`
}
