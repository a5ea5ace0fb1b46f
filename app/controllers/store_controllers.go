package controllers

import (
	"github.com/shashiranjanraj/foodineye/app/services"
	"github.com/shashiranjanraj/foodineye/pkg/ctx"
)

type StoreController struct {
	stores *services.StoreService
}

func NewStoreController(stores *services.StoreService) *StoreController {
	return &StoreController{stores: stores}
}

func (sc *StoreController) Index(c *ctx.Context) {
	stores, err := sc.stores.All(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(stores)
}

func (sc *StoreController) Show(c *ctx.Context) {
	id, err := c.RequireQuery("id")
	if err != nil {
		c.Fail(err)
		return
	}
	store, err := sc.stores.Get(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(store)
}

func (sc *StoreController) Create(c *ctx.Context) {
	var in services.StoreInput
	if !c.BindJSON(&in) {
		return
	}
	store, err := sc.stores.Create(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(store)
}

func (sc *StoreController) Update(c *ctx.Context) {
	id, err := c.RequireQuery("id")
	if err != nil {
		c.Fail(err)
		return
	}
	var in services.StoreInput
	if !c.BindJSON(&in) {
		return
	}
	store, err := sc.stores.Update(c.Context(), id, in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(store)
}

type MenuController struct {
	menus *services.MenuService
}

func NewMenuController(menus *services.MenuService) *MenuController {
	return &MenuController{menus: menus}
}

// Latest returns the store's current menu.
func (mc *MenuController) Latest(c *ctx.Context) {
	menu, err := mc.menus.Latest(c.Context(), c.Param("s_id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(menu)
}

func (mc *MenuController) Create(c *ctx.Context) {
	sID, err := c.RequireQuery("s_id")
	if err != nil {
		c.Fail(err)
		return
	}
	var in services.MenuInput
	if !c.BindJSON(&in) {
		return
	}
	menu, err := mc.menus.Create(c.Context(), sID, in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(menu)
}
