package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/shashiranjanraj/foodineye/app/models"
)

type OrderRepository struct {
	docs Collection[models.Order]
	now  func() time.Time
}

func NewOrderRepository(docs Collection[models.Order]) *OrderRepository {
	return &OrderRepository{docs: docs, now: time.Now}
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	now := r.now().UTC()
	order.CreatedAt, order.UpdatedAt = now, now
	id, err := r.docs.Create(ctx, order)
	if err != nil {
		return err
	}
	order.ID = id
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	return r.docs.FindByID(ctx, id)
}

func (r *OrderRepository) FindByStore(ctx context.Context, storeID string) ([]models.Order, error) {
	return r.docs.FindAllByField(ctx, "s_id", storeID)
}

// UpdateStatus moves the order from one status to another. It reports false
// when the stored status is no longer from.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) (bool, error) {
	return r.docs.UpdateByIDWhere(ctx, id,
		bson.M{"status": from},
		bson.M{"status": to, "updated_at": r.now().UTC()})
}

// Between returns orders created in [from, to).
func (r *OrderRepository) Between(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	return r.docs.FindInRange(ctx, "created_at", from, to)
}
