package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/shashiranjanraj/foodineye/app/models"
	"github.com/shashiranjanraj/foodineye/app/repositories"
	"github.com/shashiranjanraj/foodineye/pkg/apperr"
	"github.com/shashiranjanraj/foodineye/pkg/imageproc"
	"github.com/shashiranjanraj/foodineye/pkg/logger"
	"github.com/shashiranjanraj/foodineye/pkg/metrics"
	"github.com/shashiranjanraj/foodineye/pkg/storage"
)

// FoodInput is the body of POST and PUT /foods/food. The store id comes
// from the query string and the image key is never client-supplied.
type FoodInput struct {
	Name        string `json:"name"        validate:"required,max=60"`
	Price       int    `json:"price"       validate:"gte=0"`
	Description string `json:"description" validate:"max=500"`
	Category    string `json:"category"    validate:"max=40"`
	SoldOut     bool   `json:"soldout"`
}

type FoodService struct {
	foods  *repositories.FoodRepository
	stores *repositories.StoreRepository
	images *imageproc.Processor
	files  *storage.FileStore
}

func NewFoodService(
	foods *repositories.FoodRepository,
	stores *repositories.StoreRepository,
	images *imageproc.Processor,
	files *storage.FileStore,
) *FoodService {
	return &FoodService{foods: foods, stores: stores, images: images, files: files}
}

// List returns every food of a store, never nil.
func (s *FoodService) List(ctx context.Context, storeID string) ([]models.Food, error) {
	if _, err := repositories.ParseID(storeID); err != nil {
		return nil, err
	}
	foods, err := s.foods.FindByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if foods == nil {
		foods = []models.Food{}
	}
	return foods, nil
}

func (s *FoodService) Get(ctx context.Context, id string) (*models.Food, error) {
	return s.foods.FindByID(ctx, id)
}

// Create adds a food to an existing store. It starts without an image.
func (s *FoodService) Create(ctx context.Context, storeID string, in FoodInput) (*models.Food, error) {
	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		return nil, err
	}
	food := &models.Food{
		StoreID:     storeID,
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		Category:    in.Category,
		SoldOut:     in.SoldOut,
	}
	if err := s.foods.Create(ctx, food); err != nil {
		return nil, err
	}
	return food, nil
}

// Update overwrites the display fields. The image key is left alone.
func (s *FoodService) Update(ctx context.Context, id string, in FoodInput) (*models.Food, error) {
	err := s.foods.Update(ctx, id, bson.M{
		"name":        in.Name,
		"price":       in.Price,
		"description": in.Description,
		"category":    in.Category,
		"soldout":     in.SoldOut,
	})
	if err != nil {
		return nil, err
	}
	return s.foods.FindByID(ctx, id)
}

// ReplaceImage stores raw as the food's image. The upload is processed
// before anything is touched; the old file is then deleted (failures are
// logged and ignored), the new one written, and the record pointed at it.
func (s *FoodService) ReplaceImage(ctx context.Context, id string, raw []byte) (*models.Food, error) {
	if _, err := repositories.ParseID(id); err != nil {
		return nil, err
	}
	food, err := s.foods.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	encoded, name, err := s.images.Process(raw)
	if err != nil {
		metrics.ImageUploads.WithLabelValues("rejected").Inc()
		return nil, err
	}

	log := logger.WithCtx(ctx)
	if food.ImageKey != nil {
		if err := s.files.Delete(ctx, *food.ImageKey); err != nil {
			log.Warn("old food image not deleted", "f_id", id, "img_key", *food.ImageKey, "error", err)
		}
	}

	if err := s.files.Write(ctx, name, encoded); err != nil {
		metrics.ImageUploads.WithLabelValues("failed").Inc()
		return nil, err
	}
	if err := s.foods.UpdateField(ctx, id, "img_key", name); err != nil {
		metrics.ImageUploads.WithLabelValues("failed").Inc()
		return nil, err
	}

	metrics.ImageUploads.WithLabelValues("stored").Inc()
	log.Info("food image replaced", "f_id", id, "img_key", name, "bytes", len(encoded))
	food.ImageKey = &name
	return food, nil
}

// ImageURL returns the public locator of a food's stored image.
func (s *FoodService) ImageURL(ctx context.Context, food *models.Food) (string, error) {
	if food.ImageKey == nil {
		return "", apperr.NotFound("The food has no image.")
	}
	return s.files.URL(ctx, *food.ImageKey)
}

// Image returns the stored JPEG of a food.
func (s *FoodService) Image(ctx context.Context, id string) ([]byte, error) {
	food, err := s.foods.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if food.ImageKey == nil {
		return nil, apperr.NotFound("The food has no image.")
	}
	data, err := s.files.Read(ctx, *food.ImageKey)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.E(apperr.KindNotFound, "The image file is missing.", err)
		}
		return nil, err
	}
	return data, nil
}
