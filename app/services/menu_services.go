package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shashiranjanraj/foodineye/app/models"
	"github.com/shashiranjanraj/foodineye/app/repositories"
	"github.com/shashiranjanraj/foodineye/pkg/apperr"
	"github.com/shashiranjanraj/foodineye/pkg/cache"
	"github.com/shashiranjanraj/foodineye/pkg/collection"
	"github.com/shashiranjanraj/foodineye/pkg/logger"
	"github.com/shashiranjanraj/foodineye/pkg/metrics"
)

// MenuInput is the body of POST /menus/menu.
type MenuInput struct {
	Title   string   `json:"title" validate:"required,max=60"`
	FoodIDs []string `json:"f_ids" validate:"required"`
}

// MenuService publishes menu boards. The newest board per store is cached.
type MenuService struct {
	menus  *repositories.MenuRepository
	stores *repositories.StoreRepository
	foods  *repositories.FoodRepository
	cache  cache.Store
	ttl    time.Duration
}

func NewMenuService(
	menus *repositories.MenuRepository,
	stores *repositories.StoreRepository,
	foods *repositories.FoodRepository,
	c cache.Store,
	ttl time.Duration,
) *MenuService {
	return &MenuService{menus: menus, stores: stores, foods: foods, cache: c, ttl: ttl}
}

func latestMenuKey(storeID string) string { return "menus:latest:" + storeID }

// Latest returns the current menu of a store.
func (s *MenuService) Latest(ctx context.Context, storeID string) (*models.Menu, error) {
	if _, err := repositories.ParseID(storeID); err != nil {
		return nil, err
	}
	menu, hit, err := cache.Remember(ctx, s.cache, latestMenuKey(storeID), s.ttl, func() (*models.Menu, error) {
		return s.menus.Latest(ctx, storeID)
	})
	metrics.CacheLookup("menus", hit)
	return menu, err
}

// Create publishes a new menu for an existing store. Every listed food must
// belong to that store; repeated ids are dropped.
func (s *MenuService) Create(ctx context.Context, storeID string, in MenuInput) (*models.Menu, error) {
	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		return nil, err
	}
	in.FoodIDs = collection.Unique(in.FoodIDs)
	for _, fid := range in.FoodIDs {
		food, err := s.foods.FindByID(ctx, fid)
		if err != nil {
			return nil, err
		}
		if food.StoreID != storeID {
			return nil, apperr.Validation(fmt.Sprintf("Food %s does not belong to this store.", fid))
		}
	}

	menu := &models.Menu{StoreID: storeID, FoodIDs: in.FoodIDs, Title: in.Title}
	if err := s.menus.Create(ctx, menu); err != nil {
		return nil, err
	}
	if err := s.cache.Del(ctx, latestMenuKey(storeID)); err != nil {
		logger.WithCtx(ctx).Warn("cache invalidation failed", "s_id", storeID, "error", err)
	}
	return menu, nil
}
