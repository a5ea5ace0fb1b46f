package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/shashiranjanraj/foodineye/app/models"
	"github.com/shashiranjanraj/foodineye/app/repositories"
	"github.com/shashiranjanraj/foodineye/pkg/cache"
	"github.com/shashiranjanraj/foodineye/pkg/logger"
	"github.com/shashiranjanraj/foodineye/pkg/metrics"
)

const storesKey = "stores:all"

// StoreInput is the body of POST and PUT /stores/store.
type StoreInput struct {
	Owner       string `json:"owner"       validate:"nullable,objectid"`
	Name        string `json:"name"        validate:"required,max=60"`
	Address     string `json:"address"     validate:"max=200"`
	Phone       string `json:"phone"       validate:"max=20"`
	Description string `json:"description" validate:"max=500"`
	Open        string `json:"open"        validate:"max=5"`
	Close       string `json:"close"       validate:"max=5"`
}

func (in StoreInput) fields() bson.M {
	return bson.M{
		"owner":       in.Owner,
		"name":        in.Name,
		"address":     in.Address,
		"phone":       in.Phone,
		"description": in.Description,
		"open":        in.Open,
		"close":       in.Close,
	}
}

// StoreService serves stores, caching the full list.
type StoreService struct {
	stores *repositories.StoreRepository
	cache  cache.Store
	ttl    time.Duration
}

func NewStoreService(stores *repositories.StoreRepository, c cache.Store, ttl time.Duration) *StoreService {
	return &StoreService{stores: stores, cache: c, ttl: ttl}
}

// All returns every store, never nil.
func (s *StoreService) All(ctx context.Context) ([]models.Store, error) {
	stores, hit, err := cache.Remember(ctx, s.cache, storesKey, s.ttl, func() ([]models.Store, error) {
		list, err := s.stores.All(ctx)
		if list == nil && err == nil {
			list = []models.Store{}
		}
		return list, err
	})
	metrics.CacheLookup("stores", hit)
	return stores, err
}

func (s *StoreService) Get(ctx context.Context, id string) (*models.Store, error) {
	return s.stores.FindByID(ctx, id)
}

func (s *StoreService) Create(ctx context.Context, in StoreInput) (*models.Store, error) {
	store := &models.Store{
		Owner:       in.Owner,
		Name:        in.Name,
		Address:     in.Address,
		Phone:       in.Phone,
		Description: in.Description,
		Open:        in.Open,
		Close:       in.Close,
	}
	if err := s.stores.Create(ctx, store); err != nil {
		return nil, err
	}
	s.forget(ctx, storesKey)
	return store, nil
}

func (s *StoreService) Update(ctx context.Context, id string, in StoreInput) (*models.Store, error) {
	if err := s.stores.Update(ctx, id, in.fields()); err != nil {
		return nil, err
	}
	s.forget(ctx, storesKey)
	return s.stores.FindByID(ctx, id)
}

func (s *StoreService) forget(ctx context.Context, keys ...string) {
	if err := s.cache.Del(ctx, keys...); err != nil {
		logger.WithCtx(ctx).Warn("cache invalidation failed", "keys", keys, "error", err)
	}
}
