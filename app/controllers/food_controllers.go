package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/foodineye/app/services"
	"github.com/shashiranjanraj/foodineye/pkg/ctx"
	"github.com/shashiranjanraj/foodineye/pkg/imageproc"
)

type FoodController struct {
	foods    *services.FoodService
	maxBytes int64
}

// NewFoodController serves /foods. maxUpload caps image uploads.
func NewFoodController(foods *services.FoodService, maxUpload int64) *FoodController {
	return &FoodController{foods: foods, maxBytes: maxUpload}
}

func (fc *FoodController) Index(c *ctx.Context) {
	sID, err := c.RequireQuery("s_id")
	if err != nil {
		c.Fail(err)
		return
	}
	foods, err := fc.foods.List(c.Context(), sID)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(foods)
}

func (fc *FoodController) Show(c *ctx.Context) {
	id, err := c.RequireQuery("id")
	if err != nil {
		c.Fail(err)
		return
	}
	food, err := fc.foods.Get(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(food)
}

func (fc *FoodController) Create(c *ctx.Context) {
	sID, err := c.RequireQuery("s_id")
	if err != nil {
		c.Fail(err)
		return
	}
	var in services.FoodInput
	if !c.BindJSON(&in) {
		return
	}
	food, err := fc.foods.Create(c.Context(), sID, in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(food)
}

func (fc *FoodController) Update(c *ctx.Context) {
	id, err := c.RequireQuery("id")
	if err != nil {
		c.Fail(err)
		return
	}
	var in services.FoodInput
	if !c.BindJSON(&in) {
		return
	}
	food, err := fc.foods.Update(c.Context(), id, in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(food)
}

// ReplaceImage takes the multipart "file" field as the new food photo.
func (fc *FoodController) ReplaceImage(c *ctx.Context) {
	id, err := c.RequireQuery("id")
	if err != nil {
		c.Fail(err)
		return
	}
	raw, err := c.FormFile("file", fc.maxBytes)
	if err != nil {
		c.Fail(err)
		return
	}
	food, err := fc.foods.ReplaceImage(c.Context(), id, raw)
	if err != nil {
		c.Fail(err)
		return
	}
	if url, err := fc.foods.ImageURL(c.Context(), food); err == nil {
		c.SetHeader("Location", url)
	}
	c.Success(food)
}

// Image streams the stored JPEG.
func (fc *FoodController) Image(c *ctx.Context) {
	id, err := c.RequireQuery("id")
	if err != nil {
		c.Fail(err)
		return
	}
	data, err := fc.foods.Image(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.SetHeader("Cache-Control", "public, max-age=86400")
	c.Bytes(http.StatusOK, imageproc.ContentType, data)
}
