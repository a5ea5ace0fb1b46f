// Package kernel assembles the HTTP handler: global middleware, the API
// routes and the operational endpoints.
package kernel

import (
	"context"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/shashiranjanraj/foodineye/app/controllers"
	"github.com/shashiranjanraj/foodineye/app/routes"
	"github.com/shashiranjanraj/foodineye/config"
	"github.com/shashiranjanraj/foodineye/internal/bootstrap"
	"github.com/shashiranjanraj/foodineye/pkg/ctx"
	"github.com/shashiranjanraj/foodineye/pkg/metrics"
	"github.com/shashiranjanraj/foodineye/pkg/middleware"
	"github.com/shashiranjanraj/foodineye/pkg/reqid"
	"github.com/shashiranjanraj/foodineye/pkg/response"
	"github.com/shashiranjanraj/foodineye/pkg/router"
)

// HTTP is the application's HTTP kernel.
type HTTP struct {
	Router  *router.Router
	Limiter *middleware.RateLimiter
	c       *bootstrap.Container
}

// NewHTTPKernel builds the router for c.
func NewHTTPKernel(c *bootstrap.Container) *HTTP {
	k := &HTTP{
		Router:  router.New(),
		Limiter: middleware.NewRateLimiter(config.RateLimitRPS(), config.RateLimitBurst(), 0),
		c:       c,
	}
	r := k.Router

	// Outermost first: metrics see total latency, Recovery sits under the
	// logger so panics are still logged with their request_id.
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(chimw.StripSlashes)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions(config.CORSOrigins()...)))
	r.Use(k.Limiter.Middleware)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.Error(w, req, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		response.Error(w, req, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "healthz", ctx.Wrap(controllers.Health(pingers(c))))

	routes.RegisterAPI(r, c)
	return k
}

// Handler returns the root http.Handler.
func (k *HTTP) Handler() http.Handler { return k.Router.Handler() }

// Run starts the background loops the handler depends on (the order feed
// hub and rate-limiter eviction) and blocks until ctx is done.
func (k *HTTP) Run(ctx context.Context) {
	go k.Limiter.Run(ctx)
	k.c.Hub.Run(ctx)
}

func pingers(c *bootstrap.Container) map[string]controllers.Pinger {
	deps := map[string]controllers.Pinger{}
	if c.Mongo != nil {
		deps["mongo"] = c.Mongo
	}
	if c.Redis != nil {
		deps["redis"] = c.Redis
	}
	return deps
}
