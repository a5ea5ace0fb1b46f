package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/shashiranjanraj/foodineye/app/models"
)

type StoreRepository struct {
	docs Collection[models.Store]
}

func NewStoreRepository(docs Collection[models.Store]) *StoreRepository {
	return &StoreRepository{docs: docs}
}

func (r *StoreRepository) Create(ctx context.Context, store *models.Store) error {
	id, err := r.docs.Create(ctx, store)
	if err != nil {
		return err
	}
	store.ID = id
	return nil
}

func (r *StoreRepository) FindByID(ctx context.Context, id string) (*models.Store, error) {
	return r.docs.FindByID(ctx, id)
}

func (r *StoreRepository) All(ctx context.Context) ([]models.Store, error) {
	return r.docs.FindAll(ctx)
}

func (r *StoreRepository) Update(ctx context.Context, id string, fields bson.M) error {
	return r.docs.UpdateByID(ctx, id, fields)
}

// MenuRepository stores menu boards; the newest per store is current.
type MenuRepository struct {
	docs Collection[models.Menu]
	now  func() time.Time
}

func NewMenuRepository(docs Collection[models.Menu]) *MenuRepository {
	return &MenuRepository{docs: docs, now: time.Now}
}

func (r *MenuRepository) Create(ctx context.Context, menu *models.Menu) error {
	menu.CreatedAt = r.now().UTC()
	id, err := r.docs.Create(ctx, menu)
	if err != nil {
		return err
	}
	menu.ID = id
	return nil
}

// Latest returns the most recently created menu for storeID.
func (r *MenuRepository) Latest(ctx context.Context, storeID string) (*models.Menu, error) {
	return r.docs.FindLatestByField(ctx, "s_id", storeID, "created_at")
}
