// Package ctx provides the request context controllers are written against.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context:
//
//	func (fc *FoodController) Show(c *ctx.Context) {
//	    food, err := fc.foods.Get(c.Context(), c.Query("id"))
//	    if err != nil {
//	        c.Fail(err)
//	        return
//	    }
//	    c.Success(food)
//	}
//
//	router.Get("/foods/food", "foods.show", ctx.Wrap(fc.Show))
package ctx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/foodineye/pkg/apperr"
	"github.com/shashiranjanraj/foodineye/pkg/auth"
	"github.com/shashiranjanraj/foodineye/pkg/bind"
	"github.com/shashiranjanraj/foodineye/pkg/logger"
	"github.com/shashiranjanraj/foodineye/pkg/response"
	"github.com/shashiranjanraj/foodineye/pkg/validate"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// ── Context ──────────────────────────────────────────────────────────────────

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int
}

var pool = sync.Pool{
	New: func() any { return new(Context) },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter ("/menus/{s_id}" → c.Param("s_id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// Query returns a query-string value. Returns "" if not present.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// RequireQuery returns the named query value or a ValidationError when it
// is missing.
func (c *Context) RequireQuery(key string) (string, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return "", apperr.Validation(fmt.Sprintf("The %s query parameter is required.", key))
	}
	return v, nil
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Logger returns the request-scoped logger.
func (c *Context) Logger() *slog.Logger { return logger.WithCtx(c.R.Context()) }

// AccessClaims returns the claims verified by middleware.RequireAccess.
func (c *Context) AccessClaims() (*auth.AccessClaims, bool) {
	return auth.AccessClaimsFrom(c.R.Context())
}

// RefreshToken returns the refresh token verified by middleware.RequireRefresh.
func (c *Context) RefreshToken() (*auth.RefreshClaims, string, bool) {
	return auth.RefreshTokenFrom(c.R.Context())
}

// FormFile reads the named multipart file, refusing payloads larger than
// maxBytes with a ValidationError.
func (c *Context) FormFile(name string, maxBytes int64) ([]byte, error) {
	// Headroom for the multipart framing around the file itself.
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, maxBytes+1<<20)
	if err := c.R.ParseMultipartForm(maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, apperr.Validation(fmt.Sprintf("upload exceeds %d bytes", maxBytes))
		}
		return nil, apperr.E(apperr.KindValidation, "expected a multipart form", err)
	}
	f, _, err := c.R.FormFile(name)
	if err != nil {
		return nil, apperr.E(apperr.KindValidation, fmt.Sprintf("The %s file is required.", name), err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, apperr.E(apperr.KindIO, "could not read upload", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, apperr.Validation(fmt.Sprintf("upload exceeds %d bytes", maxBytes))
	}
	return data, nil
}

// ── Binding / Validation ─────────────────────────────────────────────────────

// BindJSON decodes the JSON body into dest and runs validation. On failure
// it sends a 400 and returns false.
//
//	var input SignupInput
//	if !c.BindJSON(&input) {
//	    return // response already sent
//	}
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	return c.afterBind(errs, err)
}

// BindForm is BindJSON for url-encoded and multipart forms.
func (c *Context) BindForm(dest any) bool {
	errs, err := bind.Form(c.R, dest)
	return c.afterBind(errs, err)
}

func (c *Context) afterBind(errs map[string]string, err error) bool {
	if err != nil {
		c.Fail(apperr.E(apperr.KindValidation, err.Error(), err))
		return false
	}
	if validate.HasErrors(errs) {
		c.ValidationError(errs)
		return false
	}
	return true
}

// ── Response helpers ─────────────────────────────────────────────────────────

// SetHeader sets a response header.
func (c *Context) SetHeader(key, value string) {
	c.W.Header().Set(key, value)
}

// JSON writes v as-is with the given status code.
func (c *Context) JSON(code int, v any) {
	c.W.Header().Set("Content-Type", "application/json")
	c.W.WriteHeader(code)
	c.status = code
	json.NewEncoder(c.W).Encode(v) //nolint:errcheck
}

// Success sends a 200 envelope.
func (c *Context) Success(data any) {
	c.status = http.StatusOK
	response.Success(c.W, c.R, data)
}

// Created sends a 201 envelope.
func (c *Context) Created(data any) {
	c.status = http.StatusCreated
	response.Created(c.W, c.R, data)
}

// Message sends a 200 envelope carrying only a message.
func (c *Context) Message(msg string) {
	c.status = http.StatusOK
	response.Write(c.W, http.StatusOK, response.Envelope{
		Request: response.RequestLine(c.R),
		Status:  response.StatusOK,
		Message: msg,
	})
}

// Fail maps err to its status and sends the error envelope. It is the only
// place handlers turn errors into responses.
func (c *Context) Fail(err error) {
	c.status = apperr.Status(err)
	response.Fail(c.W, c.R, err)
}

// ValidationError sends a 400 with field-level errors.
func (c *Context) ValidationError(errs map[string]string) {
	c.status = http.StatusBadRequest
	response.ValidationError(c.W, c.R, errs)
}

// Bytes writes a raw body with the given content type.
func (c *Context) Bytes(code int, contentType string, data []byte) {
	c.W.Header().Set("Content-Type", contentType)
	c.W.Header().Set("Content-Length", fmt.Sprint(len(data)))
	c.W.WriteHeader(code)
	c.status = code
	c.W.Write(data) //nolint:errcheck
}

// WrittenStatus returns the HTTP status code that was written to the response,
// or 0 if no response has been written yet.
func (c *Context) WrittenStatus() int { return c.status }
