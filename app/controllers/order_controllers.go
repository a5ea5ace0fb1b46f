package controllers

import (
	"github.com/shashiranjanraj/foodineye/app/services"
	"github.com/shashiranjanraj/foodineye/pkg/ctx"
	"github.com/shashiranjanraj/foodineye/pkg/ws"
)

type OrderController struct {
	orders *services.OrderService
	hub    *ws.Hub
}

func NewOrderController(orders *services.OrderService, hub *ws.Hub) *OrderController {
	return &OrderController{orders: orders, hub: hub}
}

func (oc *OrderController) Place(c *ctx.Context) {
	var in services.PlaceOrder
	if !c.BindJSON(&in) {
		return
	}
	order, err := oc.orders.Place(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(order)
}

func (oc *OrderController) Index(c *ctx.Context) {
	sID, err := c.RequireQuery("s_id")
	if err != nil {
		c.Fail(err)
		return
	}
	orders, err := oc.orders.List(c.Context(), sID)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(orders)
}

func (oc *OrderController) Show(c *ctx.Context) {
	id, err := c.RequireQuery("id")
	if err != nil {
		c.Fail(err)
		return
	}
	order, err := oc.orders.Get(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(order)
}

func (oc *OrderController) UpdateStatus(c *ctx.Context) {
	id, err := c.RequireQuery("id")
	if err != nil {
		c.Fail(err)
		return
	}
	var in services.StatusChange
	if !c.BindJSON(&in) {
		return
	}
	order, err := oc.orders.UpdateStatus(c.Context(), id, in.Status)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(order)
}

// Feed upgrades to a WebSocket subscribed to the store's order events.
func (oc *OrderController) Feed(c *ctx.Context) {
	sID := c.Param("s_id")
	if !validStoreID(sID) {
		c.ValidationError(map[string]string{"s_id": "The id format is not valid. Please check"})
		return
	}
	if err := ws.Upgrade(c.W, c.R, oc.hub, services.StoreTopic(sID)); err != nil {
		c.Logger().Warn("ws upgrade failed", "s_id", sID, "error", err)
	}
}
