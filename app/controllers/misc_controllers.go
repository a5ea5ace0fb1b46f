package controllers

import (
	"context"
	"net/http"

	"github.com/shashiranjanraj/foodineye/app/services"
	"github.com/shashiranjanraj/foodineye/pkg/ctx"
	"github.com/shashiranjanraj/foodineye/pkg/validate"
)

func validStoreID(id string) bool { return validate.ObjectID(id) }

// Hello answers the version root endpoints.
func Hello(prefix string) ctx.HandlerFunc {
	return func(c *ctx.Context) {
		c.Message("Hello '" + prefix + "'")
	}
}

// Pinger is a dependency the health check pings.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports ok when every named dependency answers.
func Health(deps map[string]Pinger) ctx.HandlerFunc {
	return func(c *ctx.Context) {
		status := map[string]string{}
		healthy := true
		for name, p := range deps {
			if err := p.Ping(c.Context()); err != nil {
				status[name] = "down"
				healthy = false
				c.Logger().Warn("health check failed", "dependency", name, "error", err)
				continue
			}
			status[name] = "up"
		}
		if !healthy {
			c.JSON(http.StatusServiceUnavailable, map[string]any{"status": "degraded", "dependencies": status})
			return
		}
		c.JSON(http.StatusOK, map[string]any{"status": "ok", "dependencies": status})
	}
}

type ObjectStorageController struct {
	objects *services.ObjectStorageService
}

func NewObjectStorageController(objects *services.ObjectStorageService) *ObjectStorageController {
	return &ObjectStorageController{objects: objects}
}

// Keys lists object keys under prefix.
func (oc *ObjectStorageController) Keys(c *ctx.Context) {
	keys, err := oc.objects.Keys(c.Context(), c.Query("prefix"), c.Query("extension"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(keys)
}

// Gaze returns one JSON object.
func (oc *ObjectStorageController) Gaze(c *ctx.Context) {
	key, err := c.RequireQuery("key")
	if err != nil {
		c.Fail(err)
		return
	}
	doc, err := oc.objects.Gaze(c.Context(), c.Query("prefix"), key)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(doc)
}

type AnalyticsController struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsController(analytics *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analytics: analytics}
}

// SaleReport summarises one day of orders.
func (ac *AnalyticsController) SaleReport(c *ctx.Context) {
	date, err := c.RequireQuery("date")
	if err != nil {
		c.Fail(err)
		return
	}
	report, err := ac.analytics.SaleReport(c.Context(), date, c.Query("s_id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(report)
}
