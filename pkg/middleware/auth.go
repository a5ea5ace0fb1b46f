package middleware

import (
	"net/http"
	"strings"

	"github.com/shashiranjanraj/foodineye/pkg/apperr"
	"github.com/shashiranjanraj/foodineye/pkg/auth"
	"github.com/shashiranjanraj/foodineye/pkg/rbac"
	"github.com/shashiranjanraj/foodineye/pkg/response"
)

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// RequireAccess verifies the bearer access token and, when scopes are
// given, requires the token's scope to be one of them. Claims are stored in
// the request context (auth.AccessClaimsFrom).
func RequireAccess(tm *auth.TokenManager, scopes ...auth.Scope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := tm.VerifyAccessToken(BearerToken(r))
			if err != nil {
				response.Fail(w, r, err)
				return
			}
			if len(scopes) > 0 && !rbac.Allows(claims.Scope, scopes...) {
				response.Fail(w, r, apperr.Scope("The token scope does not permit this endpoint."))
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithAccessClaims(r.Context(), claims)))
		})
	}
}

// RequireRefresh verifies the bearer refresh token and stores it, raw and
// parsed, in the request context (auth.RefreshTokenFrom).
func RequireRefresh(tm *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := BearerToken(r)
			claims, err := tm.VerifyRefreshToken(raw)
			if err != nil {
				response.Fail(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithRefreshToken(r.Context(), claims, raw)))
		})
	}
}
