package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/foodineye/pkg/auth"
	"github.com/shashiranjanraj/foodineye/pkg/middleware"
	"github.com/shashiranjanraj/foodineye/pkg/response"
)

func noContent(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestRecoveryTurnsPanicInto500(t *testing.T) {
	h := middleware.Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v3/foods", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decode(t, w)
	assert.Equal(t, response.StatusError, env.Status)
	assert.Equal(t, "GET /api/v3/foods", env.Request)
}

func TestRateLimiterPerClient(t *testing.T) {
	rl := middleware.NewRateLimiter(1, 2, time.Minute)
	h := rl.Middleware(http.HandlerFunc(noContent))

	hit := func(ip string) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = ip + ":5555"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.2"))
	assert.Equal(t, 2, rl.Len())

	rl.Cleanup(time.Now().Add(2 * time.Minute))
	assert.Equal(t, 0, rl.Len())
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", middleware.ClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", middleware.ClientIP(r))
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, middleware.BearerToken(r))

	r.Header.Set("Authorization", "Bearer abc.def")
	assert.Equal(t, "abc.def", middleware.BearerToken(r))

	r.Header.Set("Authorization", "Basic Zm9v")
	assert.Empty(t, middleware.BearerToken(r))
}

func newTokens() *auth.TokenManager {
	return auth.NewTokenManager(auth.TokenConfig{AccessSecret: "a", RefreshSecret: "r"})
}

func TestRequireAccess(t *testing.T) {
	tm := newTokens()
	var got *auth.AccessClaims
	h := middleware.RequireAccess(tm, auth.ScopeSeller)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.AccessClaimsFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(token string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/v3/foods/food", nil)
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	w := call("")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "InvalidSignatureError", decode(t, w).Code)

	buyer, err := tm.IssueAccessToken(auth.ScopeBuyer)
	require.NoError(t, err)
	w = call(buyer)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "ScopeError", decode(t, w).Code)

	refresh, err := tm.IssueRefreshToken("u1", auth.ScopeSeller)
	require.NoError(t, err)
	w = call(refresh)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	seller, err := tm.IssueAccessToken(auth.ScopeSeller)
	require.NoError(t, err)
	w = call(seller)
	assert.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, auth.ScopeSeller, got.Scope)
}

func TestRequireRefreshStoresRawToken(t *testing.T) {
	tm := newTokens()
	tok, err := tm.IssueRefreshToken("u1", auth.ScopeBuyer)
	require.NoError(t, err)

	var raw, sub string
	h := middleware.RequireRefresh(tm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, tk, _ := auth.RefreshTokenFrom(r.Context())
		raw, sub = tk, claims.Subject
		w.WriteHeader(http.StatusNoContent)
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/v2/users/issue/access?u_id=u1", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, tok, raw)
	assert.Equal(t, "u1", sub)
}

func TestCORSPreflight(t *testing.T) {
	h := middleware.CORS(middleware.DefaultCORSOptions("https://app.example.com"))(http.HandlerFunc(noContent))

	r := httptest.NewRequest(http.MethodOptions, "/api/v3/foods", nil)
	r.Header.Set("Origin", "https://app.example.com")
	r.Header.Set("Access-Control-Request-Method", "PUT")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Request-ID")

	r = httptest.NewRequest(http.MethodGet, "/api/v3/foods", nil)
	r.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
