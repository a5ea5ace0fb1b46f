package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderOrdered  OrderStatus = "ordered"
	OrderAccepted OrderStatus = "accepted"
	OrderCooking  OrderStatus = "cooking"
	OrderReady    OrderStatus = "ready"
	OrderDone     OrderStatus = "done"
	OrderCanceled OrderStatus = "canceled"
)

// orderFlow lists the statuses reachable from each state.
var orderFlow = map[OrderStatus][]OrderStatus{
	OrderOrdered:  {OrderAccepted, OrderCanceled},
	OrderAccepted: {OrderCooking, OrderCanceled},
	OrderCooking:  {OrderReady},
	OrderReady:    {OrderDone},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderOrdered, OrderAccepted, OrderCooking, OrderReady, OrderDone, OrderCanceled:
		return true
	}
	return false
}

// CanMoveTo reports whether an order in state s may transition to next.
func (s OrderStatus) CanMoveTo(next OrderStatus) bool {
	for _, n := range orderFlow[s] {
		if n == next {
			return true
		}
	}
	return false
}

// OrderItem is one line of an order, priced at the time of ordering.
type OrderItem struct {
	FoodID string `bson:"f_id"  json:"f_id"`
	Name   string `bson:"name"  json:"name"`
	Price  int    `bson:"price" json:"price"`
	Count  int    `bson:"count" json:"count"`
}

// Order is a buyer's order placed at one store.
type Order struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	StoreID   string             `bson:"s_id"          json:"s_id"`
	UserID    string             `bson:"u_id"          json:"u_id"`
	Items     []OrderItem        `bson:"items"         json:"items"`
	Total     int                `bson:"total"         json:"total"`
	Status    OrderStatus        `bson:"status"        json:"status"`
	CreatedAt time.Time          `bson:"created_at"    json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"    json:"updated_at"`
}

// SaleReport aggregates one day of orders.
type SaleReport struct {
	Date     string         `json:"date"`
	StoreID  string         `json:"s_id,omitempty"`
	Orders   int            `json:"orders"`
	Canceled int            `json:"canceled"`
	Revenue  int            `json:"revenue"`
	ByFood   map[string]int `json:"by_food"`
}
