package controllers

import (
	"github.com/shashiranjanraj/foodineye/app/services"
	"github.com/shashiranjanraj/foodineye/pkg/apperr"
	"github.com/shashiranjanraj/foodineye/pkg/auth"
	"github.com/shashiranjanraj/foodineye/pkg/ctx"
)

// UserController serves /users: signup, login, profile changes and the
// token endpoints.
type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// IDCheck reports whether a login id is still free.
func (uc *UserController) IDCheck(c *ctx.Context) {
	var in struct {
		ID string `json:"id" validate:"required"`
	}
	if !c.BindJSON(&in) {
		return
	}
	available, err := uc.users.IDAvailable(c.Context(), in.ID)
	if err != nil {
		c.Fail(err)
		return
	}
	state := "unavailable"
	if available {
		state = "available"
	}
	c.Success(map[string]string{"state": state})
}

func (uc *UserController) BuyerSignup(c *ctx.Context) {
	var in services.BuyerSignup
	if !c.BindJSON(&in) {
		return
	}
	user, err := uc.users.SignupBuyer(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(map[string]string{"u_id": user.Hex()})
}

func (uc *UserController) SellerSignup(c *ctx.Context) {
	var in services.SellerSignup
	if !c.BindJSON(&in) {
		return
	}
	user, err := uc.users.SignupSeller(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(map[string]string{"u_id": user.Hex()})
}

// Login returns a handler for the login form of one scope.
func (uc *UserController) Login(scope auth.Scope) ctx.HandlerFunc {
	return func(c *ctx.Context) {
		var in services.Credentials
		if !c.BindForm(&in) {
			return
		}
		sess, err := uc.users.Login(c.Context(), scope, in)
		if err != nil {
			c.Fail(err)
			return
		}
		c.Success(sess)
	}
}

// Profile re-authenticates with the login form and returns the account.
func (uc *UserController) Profile(c *ctx.Context) {
	var in services.Credentials
	if !c.BindForm(&in) {
		return
	}
	user, err := uc.users.Profile(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(user)
}

func (uc *UserController) ChangePassword(c *ctx.Context) {
	id, err := c.RequireQuery("u_id")
	if err != nil {
		c.Fail(err)
		return
	}
	var in services.PasswordChange
	if !c.BindJSON(&in) {
		return
	}
	if err := uc.users.ChangePassword(c.Context(), id, in); err != nil {
		c.Fail(err)
		return
	}
	c.Message("The password has been changed.")
}

func (uc *UserController) ChangeBuyerInfo(c *ctx.Context) {
	id, claims, ok := uc.target(c)
	if !ok {
		return
	}
	var in services.BuyerInfo
	if !c.BindJSON(&in) {
		return
	}
	user, err := uc.users.ChangeBuyerInfo(c.Context(), id, claims.Scope, in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(user)
}

func (uc *UserController) ChangeSellerStore(c *ctx.Context) {
	id, claims, ok := uc.target(c)
	if !ok {
		return
	}
	var in services.SellerStore
	if !c.BindJSON(&in) {
		return
	}
	user, err := uc.users.ChangeSellerStore(c.Context(), id, claims.Scope, in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(user)
}

// target returns the u_id query value and the verified access claims.
func (uc *UserController) target(c *ctx.Context) (string, *auth.AccessClaims, bool) {
	id, err := c.RequireQuery("u_id")
	if err != nil {
		c.Fail(err)
		return "", nil, false
	}
	claims, ok := c.AccessClaims()
	if !ok {
		c.Fail(apperr.E(apperr.KindInvalidSignature, "missing token", nil))
		return "", nil, false
	}
	return id, claims, true
}

func (uc *UserController) IssueAccess(c *ctx.Context) {
	id, claims, raw, ok := uc.refresh(c)
	if !ok {
		return
	}
	tok, err := uc.users.IssueAccess(c.Context(), id, claims, raw)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]string{"access_token": tok, "token_type": services.TokenType})
}

func (uc *UserController) IssueRefresh(c *ctx.Context) {
	id, claims, raw, ok := uc.refresh(c)
	if !ok {
		return
	}
	tok, err := uc.users.IssueRefresh(c.Context(), id, claims, raw)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]string{"refresh_token": tok, "token_type": services.TokenType})
}

func (uc *UserController) Logout(c *ctx.Context) {
	id, claims, raw, ok := uc.refresh(c)
	if !ok {
		return
	}
	if err := uc.users.Logout(c.Context(), id, claims, raw); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Logged out.")
}

func (uc *UserController) refresh(c *ctx.Context) (string, *auth.RefreshClaims, string, bool) {
	id, err := c.RequireQuery("u_id")
	if err != nil {
		c.Fail(err)
		return "", nil, "", false
	}
	claims, raw, ok := c.RefreshToken()
	if !ok {
		c.Fail(apperr.E(apperr.KindInvalidSignature, "missing token", nil))
		return "", nil, "", false
	}
	return id, claims, raw, true
}

// tokenEcho is what the token test endpoints return: the verified claims,
// never the token itself.
type tokenEcho struct {
	Subject   string     `json:"sub,omitempty"`
	Scope     auth.Scope `json:"scope"`
	ExpiresAt int64      `json:"exp"`
}

func (uc *UserController) TestAccessToken(c *ctx.Context) {
	claims, ok := c.AccessClaims()
	if !ok {
		c.Fail(apperr.E(apperr.KindInvalidSignature, "missing token", nil))
		return
	}
	c.Success(tokenEcho{Scope: claims.Scope, ExpiresAt: claims.ExpiresAt.Unix()})
}

func (uc *UserController) TestRefreshToken(c *ctx.Context) {
	claims, _, ok := c.RefreshToken()
	if !ok {
		c.Fail(apperr.E(apperr.KindInvalidSignature, "missing token", nil))
		return
	}
	c.Success(tokenEcho{Subject: claims.Subject, Scope: claims.Scope, ExpiresAt: claims.ExpiresAt.Unix()})
}
