// Package routes maps URLs to controllers.
package routes

import (
	"github.com/shashiranjanraj/foodineye/app/controllers"
	"github.com/shashiranjanraj/foodineye/internal/bootstrap"
	"github.com/shashiranjanraj/foodineye/pkg/auth"
	"github.com/shashiranjanraj/foodineye/pkg/ctx"
	"github.com/shashiranjanraj/foodineye/pkg/middleware"
	"github.com/shashiranjanraj/foodineye/pkg/router"
)

// RegisterAPI registers every versioned endpoint. The resource routers are
// mounted under both /api/v2 and /api/v3; users, orders, s3, analytics and
// the order feed live under /api/v2 only.
func RegisterAPI(r *router.Router, c *bootstrap.Container) {
	users := controllers.NewUserController(c.Users)
	stores := controllers.NewStoreController(c.Stores)
	menus := controllers.NewMenuController(c.Menus)
	foods := controllers.NewFoodController(c.Foods, c.MaxUpload)
	orders := controllers.NewOrderController(c.Orders, c.Hub)
	objects := controllers.NewObjectStorageController(c.Objects)
	analytics := controllers.NewAnalyticsController(c.Analytics)

	access := middleware.RequireAccess(c.Tokens)
	buyer := middleware.RequireAccess(c.Tokens, auth.ScopeBuyer)
	seller := middleware.RequireAccess(c.Tokens, auth.ScopeSeller)
	refresh := middleware.RequireRefresh(c.Tokens)

	r.Get("/", "hello", ctx.Wrap(controllers.Hello("/")))

	for _, version := range []string{"v2", "v3"} {
		api := r.Group("/api/" + version)
		name := func(n string) string { return version + "." + n }

		api.Get("/", name("hello"), ctx.Wrap(controllers.Hello("api/"+version)))

		s := api.Group("/stores")
		s.Get("/", name("stores.index"), ctx.Wrap(stores.Index))
		s.Get("/store", name("stores.show"), ctx.Wrap(stores.Show))
		s.Post("/store", name("stores.create"), ctx.Wrap(stores.Create), seller)
		s.Put("/store", name("stores.update"), ctx.Wrap(stores.Update), seller)

		m := api.Group("/menus")
		m.Get("/{s_id}", name("menus.latest"), ctx.Wrap(menus.Latest))
		m.Post("/menu", name("menus.create"), ctx.Wrap(menus.Create), seller)

		f := api.Group("/foods")
		f.Get("/hello", name("foods.hello"), ctx.Wrap(controllers.Hello("api/"+version+"/foods")))
		f.Get("/", name("foods.index"), ctx.Wrap(foods.Index))
		f.Get("/food", name("foods.show"), ctx.Wrap(foods.Show))
		f.Post("/food", name("foods.create"), ctx.Wrap(foods.Create), seller)
		f.Put("/food", name("foods.update"), ctx.Wrap(foods.Update), seller)
		f.Get("/food/image", name("foods.image"), ctx.Wrap(foods.Image))
		f.Put("/food/image", name("foods.image.replace"), ctx.Wrap(foods.ReplaceImage), seller)
	}

	v2 := r.Group("/api/v2")

	u := v2.Group("/users")
	u.Get("/hello", "users.hello", ctx.Wrap(controllers.Hello("api/v2/users")))
	u.Post("/idcheck", "users.idcheck", ctx.Wrap(users.IDCheck))
	u.Post("/buyer/signup", "users.buyer.signup", ctx.Wrap(users.BuyerSignup))
	u.Post("/seller/signup", "users.seller.signup", ctx.Wrap(users.SellerSignup))
	u.Post("/buyer/login", "users.buyer.login", ctx.Wrap(users.Login(auth.ScopeBuyer)))
	u.Post("/seller/login", "users.seller.login", ctx.Wrap(users.Login(auth.ScopeSeller)))
	u.Post("/change", "users.profile", ctx.Wrap(users.Profile))
	u.Put("/change/pw", "users.change.pw", ctx.Wrap(users.ChangePassword))
	u.Put("/buyer/change/info", "users.buyer.change.info", ctx.Wrap(users.ChangeBuyerInfo), buyer)
	u.Put("/seller/change/store", "users.seller.change.store", ctx.Wrap(users.ChangeSellerStore), seller)
	u.Get("/issue/access", "users.issue.access", ctx.Wrap(users.IssueAccess), refresh)
	u.Get("/issue/refresh", "users.issue.refresh", ctx.Wrap(users.IssueRefresh), refresh)
	u.Post("/logout", "users.logout", ctx.Wrap(users.Logout), refresh)
	u.Get("/test/a_token", "users.test.a_token", ctx.Wrap(users.TestAccessToken), access)
	u.Get("/test/r_token", "users.test.r_token", ctx.Wrap(users.TestRefreshToken), refresh)

	o := v2.Group("/orders")
	o.Get("/", "orders.index", ctx.Wrap(orders.Index))
	o.Get("/order", "orders.show", ctx.Wrap(orders.Show))
	o.Post("/order", "orders.place", ctx.Wrap(orders.Place), buyer)
	o.Put("/order/status", "orders.status", ctx.Wrap(orders.UpdateStatus), seller)

	v2.Get("/s3/keys", "s3.keys", ctx.Wrap(objects.Keys))
	v2.Get("/s3/keys/gaze", "s3.gaze", ctx.Wrap(objects.Gaze))
	v2.Get("/anlz", "analytics.sales", ctx.Wrap(analytics.SaleReport))
	v2.Get("/ws/stores/{s_id}", "orders.feed", ctx.Wrap(orders.Feed))
}
