package services

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/foodineye/app/models"
	"github.com/shashiranjanraj/foodineye/app/repositories"
	"github.com/shashiranjanraj/foodineye/pkg/apperr"
	"github.com/shashiranjanraj/foodineye/pkg/auth"
	"github.com/shashiranjanraj/foodineye/pkg/event"
	"github.com/shashiranjanraj/foodineye/pkg/logger"
	"github.com/shashiranjanraj/foodineye/pkg/metrics"
	"github.com/shashiranjanraj/foodineye/pkg/rbac"
)

// OrderLine is one requested food and count.
type OrderLine struct {
	FoodID string `json:"f_id"  validate:"required,objectid"`
	Count  int    `json:"count" validate:"gte=1,lte=99"`
}

// PlaceOrder is the body of POST /orders/order.
type PlaceOrder struct {
	StoreID string      `json:"s_id"  validate:"required,objectid"`
	UserID  string      `json:"u_id"  validate:"required,objectid"`
	Items   []OrderLine `json:"items" validate:"required,dive"`
}

// StatusChange is the body of PUT /orders/order/status.
type StatusChange struct {
	Status models.OrderStatus `json:"status" validate:"required,in=accepted|cooking|ready|done|canceled"`
}

// OrderService places orders and moves them through their lifecycle.
// Every change is fired on the dispatcher for the live order feed.
type OrderService struct {
	orders *repositories.OrderRepository
	foods  *repositories.FoodRepository
	users  *repositories.UserRepository
	events *event.Dispatcher
}

func NewOrderService(
	orders *repositories.OrderRepository,
	foods *repositories.FoodRepository,
	users *repositories.UserRepository,
	events *event.Dispatcher,
) *OrderService {
	return &OrderService{orders: orders, foods: foods, users: users, events: events}
}

// Place prices the order from current food records. Foods from another
// store or sold out are rejected; repeated lines are merged.
func (s *OrderService) Place(ctx context.Context, in PlaceOrder) (*models.Order, error) {
	buyer, err := s.users.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := rbac.Match(auth.ScopeBuyer, buyer.Scope); err != nil {
		return nil, err
	}

	order := &models.Order{StoreID: in.StoreID, UserID: in.UserID, Status: models.OrderOrdered}
	index := map[string]int{}
	for _, line := range in.Items {
		if i, ok := index[line.FoodID]; ok {
			order.Items[i].Count += line.Count
			order.Total += order.Items[i].Price * line.Count
			continue
		}
		food, err := s.foods.FindByID(ctx, line.FoodID)
		if err != nil {
			return nil, err
		}
		if food.StoreID != in.StoreID {
			return nil, apperr.Validation(fmt.Sprintf("Food %s is not sold by this store.", line.FoodID))
		}
		if food.SoldOut {
			return nil, apperr.Validation(fmt.Sprintf("%s is sold out.", food.Name))
		}
		index[line.FoodID] = len(order.Items)
		order.Items = append(order.Items, models.OrderItem{
			FoodID: line.FoodID,
			Name:   food.Name,
			Price:  food.Price,
			Count:  line.Count,
		})
		order.Total += food.Price * line.Count
	}
	if len(order.Items) == 0 {
		return nil, apperr.Validation("The order has no items.")
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	metrics.OrdersPlaced.Inc()
	logger.WithCtx(ctx).Info("order placed", "o_id", order.ID.Hex(), "s_id", order.StoreID, "total", order.Total)
	s.events.Fire(event.OrderPlaced, *order)
	return order, nil
}

// List returns a store's orders, never nil.
func (s *OrderService) List(ctx context.Context, storeID string) ([]models.Order, error) {
	if _, err := repositories.ParseID(storeID); err != nil {
		return nil, err
	}
	orders, err := s.orders.FindByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	return s.orders.FindByID(ctx, id)
}

// UpdateStatus moves an order to next if the lifecycle allows it.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("Unknown order status %q.", next))
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanMoveTo(next) {
		return nil, apperr.Validation(fmt.Sprintf("An order cannot move from %s to %s.", order.Status, next))
	}
	moved, err := s.orders.UpdateStatus(ctx, id, order.Status, next)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, apperr.Validation("The order status changed meanwhile. Reload and try again.")
	}
	order.Status = next
	s.events.Fire(event.OrderStatusChanged, *order)
	return order, nil
}
