package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/foodineye/pkg/auth"
)

// User is an account in the users collection. Buyers carry a profile,
// sellers a store id.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"u_id"`
	LoginID   string             `bson:"id"            json:"id"`
	Password  string             `bson:"pw"            json:"-"` // bcrypt, never serialised
	Scope     auth.Scope         `bson:"scope"         json:"scope"`
	Name      string             `bson:"name,omitempty"   json:"name,omitempty"`
	Gender    string             `bson:"gender,omitempty" json:"gender,omitempty"`
	Age       int                `bson:"age,omitempty"    json:"age,omitempty"`
	StoreID   string             `bson:"s_id"          json:"s_id,omitempty"`
	RToken    string             `bson:"R_Token"       json:"-"`
	CreatedAt time.Time          `bson:"created_at"    json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"    json:"updated_at"`
}

// Hex returns the user's id as a hex string.
func (u *User) Hex() string { return u.ID.Hex() }
