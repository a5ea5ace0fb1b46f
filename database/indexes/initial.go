package indexes

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/foodineye/pkg/database"
)

func init() {
	// Login ids are unique; concurrent signups race on the duplicate check
	// and this index is what rejects the loser.
	Register(database.UserCollection, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_login_id"),
	})

	Register(database.FoodCollection, mongo.IndexModel{
		Keys:    bson.D{{Key: "s_id", Value: 1}},
		Options: options.Index().SetName("food_by_store"),
	})

	Register(database.MenuCollection, mongo.IndexModel{
		Keys:    bson.D{{Key: "s_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("menu_latest"),
	})

	Register(database.OrderCollection,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "s_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("order_by_store"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetName("order_by_day"),
		},
	)
}
