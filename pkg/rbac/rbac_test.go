package rbac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/foodineye/pkg/apperr"
	"github.com/shashiranjanraj/foodineye/pkg/auth"
	"github.com/shashiranjanraj/foodineye/pkg/rbac"
)

func TestAllows(t *testing.T) {
	assert.True(t, rbac.Allows(auth.ScopeBuyer))
	assert.False(t, rbac.Allows(auth.Scope("admin")))
	assert.True(t, rbac.Allows(auth.ScopeSeller, auth.ScopeSeller))
	assert.False(t, rbac.Allows(auth.ScopeBuyer, auth.ScopeSeller))
}

func TestMatch(t *testing.T) {
	assert.NoError(t, rbac.Match(auth.ScopeBuyer, auth.ScopeBuyer))
	assert.ErrorIs(t, rbac.Match(auth.ScopeBuyer, auth.ScopeSeller), apperr.ErrScope)
}
