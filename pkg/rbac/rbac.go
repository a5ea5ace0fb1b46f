// Package rbac guards endpoints by token scope.
//
// Scopes are checked twice: middleware.RequireAccess checks the token against
// the route with Allows, and services check it against the user record the
// request targets with Match.
package rbac

import (
	"github.com/shashiranjanraj/foodineye/pkg/apperr"
	"github.com/shashiranjanraj/foodineye/pkg/auth"
)

// Allows reports whether s is one of allowed. An empty allowed list admits
// every valid scope.
func Allows(s auth.Scope, allowed ...auth.Scope) bool {
	if len(allowed) == 0 {
		return s.Valid()
	}
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}

// Match fails with a ScopeError when the token scope differs from the scope
// stored on the user record.
func Match(token, user auth.Scope) error {
	if token != user {
		return apperr.Scope("The token scope does not match the user.")
	}
	return nil
}
