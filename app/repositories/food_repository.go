package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/shashiranjanraj/foodineye/app/models"
)

type FoodRepository struct {
	docs Collection[models.Food]
}

func NewFoodRepository(docs Collection[models.Food]) *FoodRepository {
	return &FoodRepository{docs: docs}
}

// Create inserts food with a null image key.
func (r *FoodRepository) Create(ctx context.Context, food *models.Food) error {
	food.ImageKey = nil
	id, err := r.docs.Create(ctx, food)
	if err != nil {
		return err
	}
	food.ID = id
	return nil
}

func (r *FoodRepository) FindByID(ctx context.Context, id string) (*models.Food, error) {
	return r.docs.FindByID(ctx, id)
}

func (r *FoodRepository) FindByStore(ctx context.Context, storeID string) ([]models.Food, error) {
	return r.docs.FindAllByField(ctx, "s_id", storeID)
}

func (r *FoodRepository) Update(ctx context.Context, id string, fields bson.M) error {
	return r.docs.UpdateByID(ctx, id, fields)
}

// UpdateField sets a single field, e.g. the image key.
func (r *FoodRepository) UpdateField(ctx context.Context, id, field string, value any) error {
	return r.docs.UpdateFieldByID(ctx, id, field, value)
}
