// Package router wraps chi with named routes and prefix groups.
//
//	r := router.New()
//	api := r.Group("/api/v3", middleware.RequireAccess(tm))
//	api.Get("/foods/food", "v3.foods.show", ctx.Wrap(fc.Show))
//
// Names are unique; registering one twice panics at start-up.
package router

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

type Middleware func(http.Handler) http.Handler

// Route describes one registered endpoint.
type Route struct {
	Method string
	Path   string
	Name   string
}

// Router owns the chi mux, the root group and the route table.
type Router struct {
	root  *Group
	mux   chi.Router
	mu    sync.RWMutex
	table []Route
	names map[string]struct{}
}

// Group registers routes under a shared prefix and middleware stack.
type Group struct {
	router      *Router
	prefix      string
	middlewares []Middleware
}

func New() *Router {
	r := &Router{mux: chi.NewRouter(), names: map[string]struct{}{}}
	r.root = &Group{router: r, prefix: "/"}
	return r
}

func (r *Router) Group(prefix string, middlewares ...Middleware) *Group {
	return r.root.Group(prefix, middlewares...)
}

func (r *Router) Get(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.root.Get(path, name, handler, middlewares...)
}

func (r *Router) Post(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.root.Post(path, name, handler, middlewares...)
}

func (r *Router) Put(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.root.Put(path, name, handler, middlewares...)
}

func (r *Router) Delete(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.root.Delete(path, name, handler, middlewares...)
}

func (r *Router) Handler() http.Handler { return r.mux }

// Use adds middleware that runs for every request, matched or not.
func (r *Router) Use(middlewares ...Middleware) {
	for _, mw := range middlewares {
		r.mux.Use(mw)
	}
}

// NotFound sets the handler for unmatched paths.
func (r *Router) NotFound(handler http.HandlerFunc) { r.mux.NotFound(handler) }

// MethodNotAllowed sets the handler for a known path with the wrong method.
func (r *Router) MethodNotAllowed(handler http.HandlerFunc) { r.mux.MethodNotAllowed(handler) }

// Routes returns every registered route sorted by path, then method.
func (r *Router) Routes() []Route {
	r.mu.RLock()
	out := append([]Route(nil), r.table...)
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

func (r *Router) register(rt Route, h http.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rt.Name != "" {
		if _, dup := r.names[rt.Name]; dup {
			panic(fmt.Sprintf("router: route name %q registered twice", rt.Name))
		}
		r.names[rt.Name] = struct{}{}
	}
	r.mux.Method(rt.Method, rt.Path, h)
	r.table = append(r.table, rt)
}

// Group returns a child group; its middleware runs after the parent's.
func (g *Group) Group(prefix string, middlewares ...Middleware) *Group {
	return &Group{
		router:      g.router,
		prefix:      joinPath(g.prefix, prefix),
		middlewares: g.with(middlewares),
	}
}

func (g *Group) Get(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	g.handle(http.MethodGet, path, name, handler, middlewares)
}

func (g *Group) Post(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	g.handle(http.MethodPost, path, name, handler, middlewares)
}

func (g *Group) Put(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	g.handle(http.MethodPut, path, name, handler, middlewares)
}

func (g *Group) Delete(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	g.handle(http.MethodDelete, path, name, handler, middlewares)
}

func (g *Group) handle(method, path, name string, handler http.Handler, extra []Middleware) {
	stack := g.with(extra)
	for i := len(stack) - 1; i >= 0; i-- {
		handler = stack[i](handler)
	}
	g.router.register(Route{Method: method, Path: joinPath(g.prefix, path), Name: name}, handler)
}

func (g *Group) with(extra []Middleware) []Middleware {
	return append(append([]Middleware(nil), g.middlewares...), extra...)
}

// joinPath joins segments into one absolute path without duplicate or
// trailing slashes. The root is "/".
func joinPath(parts ...string) string {
	var segments []string
	for _, part := range parts {
		if trimmed := strings.Trim(part, "/"); trimmed != "" {
			segments = append(segments, trimmed)
		}
	}
	return "/" + strings.Join(segments, "/")
}
