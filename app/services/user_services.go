package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/shashiranjanraj/foodineye/app/models"
	"github.com/shashiranjanraj/foodineye/app/repositories"
	"github.com/shashiranjanraj/foodineye/pkg/apperr"
	"github.com/shashiranjanraj/foodineye/pkg/auth"
	"github.com/shashiranjanraj/foodineye/pkg/logger"
	"github.com/shashiranjanraj/foodineye/pkg/metrics"
	"github.com/shashiranjanraj/foodineye/pkg/rbac"
)

// TokenType is the token_type value returned with every issued token.
const TokenType = "bearer"

// BuyerSignup is the body of POST /users/buyer/signup.
type BuyerSignup struct {
	ID     string `json:"id"     validate:"required,alpha_dash,min=3,max=40"`
	PW     string `json:"pw"     validate:"required,min=4,max=72"`
	Name   string `json:"name"   validate:"required,max=40"`
	Gender string `json:"gender" validate:"required,in=male|female"`
	Age    int    `json:"age"    validate:"gte=0,lte=150"`
}

// SellerSignup is the body of POST /users/seller/signup.
type SellerSignup struct {
	ID string `json:"id" validate:"required,alpha_dash,min=3,max=40"`
	PW string `json:"pw" validate:"required,min=4,max=72"`
}

// Credentials is the form posted to the login endpoints.
type Credentials struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

// PasswordChange is the body of PUT /users/change/pw.
type PasswordChange struct {
	OldPW string `json:"old_pw" validate:"required"`
	NewPW string `json:"new_pw" validate:"required,min=4,max=72"`
}

// BuyerInfo is the body of PUT /users/buyer/change/info.
type BuyerInfo struct {
	Name   string `json:"name"   validate:"required,max=40"`
	Gender string `json:"gender" validate:"required,in=male|female"`
	Age    int    `json:"age"    validate:"gte=0,lte=150"`
}

// SellerStore is the body of PUT /users/seller/change/store.
type SellerStore struct {
	StoreID string `json:"s_id" validate:"required,objectid"`
}

// Session is what a successful login returns.
type Session struct {
	UserID       string  `json:"u_id"`
	StoreID      *string `json:"s_id,omitempty"`
	TokenType    string  `json:"token_type"`
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
}

// UserService runs signup, login, profile changes and the token lifecycle.
// Each user holds one refresh token; issuing a new one revokes the previous.
type UserService struct {
	auth   *AuthService
	users  *repositories.UserRepository
	stores *repositories.StoreRepository
	hasher *auth.Hasher
	tokens *auth.TokenManager
}

func NewUserService(
	authSvc *AuthService,
	users *repositories.UserRepository,
	stores *repositories.StoreRepository,
	hasher *auth.Hasher,
	tokens *auth.TokenManager,
) *UserService {
	return &UserService{auth: authSvc, users: users, stores: stores, hasher: hasher, tokens: tokens}
}

// IDAvailable reports whether loginID can still be registered.
func (s *UserService) IDAvailable(ctx context.Context, loginID string) (bool, error) {
	taken, err := s.auth.CheckDuplicate(ctx, loginID)
	return !taken, err
}

// SignupBuyer registers a buyer. The unique index on the login id decides
// races; the pre-check only saves a bcrypt round.
func (s *UserService) SignupBuyer(ctx context.Context, in BuyerSignup) (*models.User, error) {
	return s.signup(ctx, &models.User{
		LoginID: in.ID,
		Scope:   auth.ScopeBuyer,
		Name:    in.Name,
		Gender:  in.Gender,
		Age:     in.Age,
	}, in.PW)
}

// SignupSeller registers a seller with no store yet.
func (s *UserService) SignupSeller(ctx context.Context, in SellerSignup) (*models.User, error) {
	return s.signup(ctx, &models.User{LoginID: in.ID, Scope: auth.ScopeSeller}, in.PW)
}

func (s *UserService) signup(ctx context.Context, user *models.User, password string) (*models.User, error) {
	taken, err := s.auth.CheckDuplicate(ctx, user.LoginID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Duplicate("The id is already in use")
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperr.E(apperr.KindInternal, "hash password", err)
	}
	user.Password = hashed

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	logger.WithCtx(ctx).Info("user signed up", "u_id", user.Hex(), "scope", user.Scope.String())
	return user, nil
}

// Login verifies the credentials, requires the account to hold scope, and
// starts a session: a fresh access token plus a refresh token that replaces
// any previous one.
func (s *UserService) Login(ctx context.Context, scope auth.Scope, in Credentials) (*Session, error) {
	user, err := s.auth.Authenticate(ctx, in.Username, in.Password)
	if err != nil {
		return nil, err
	}
	if user.Scope != scope {
		return nil, apperr.Scope("This account cannot log in here.")
	}

	refresh, err := s.tokens.IssueRefreshToken(user.Hex(), user.Scope)
	if err != nil {
		return nil, err
	}
	access, err := s.tokens.IssueAccessToken(user.Scope)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetRefreshToken(ctx, user.Hex(), refresh); err != nil {
		return nil, err
	}
	metrics.TokensIssued.WithLabelValues("refresh").Inc()
	metrics.TokensIssued.WithLabelValues("access").Inc()

	sess := &Session{
		UserID:       user.Hex(),
		TokenType:    TokenType,
		AccessToken:  access,
		RefreshToken: refresh,
	}
	if user.Scope == auth.ScopeSeller {
		sid := user.StoreID
		sess.StoreID = &sid
	}
	logger.WithCtx(ctx).Info("user logged in", "u_id", user.Hex(), "scope", user.Scope.String())
	return sess, nil
}

// Profile re-authenticates and returns the account.
func (s *UserService) Profile(ctx context.Context, in Credentials) (*models.User, error) {
	return s.auth.Authenticate(ctx, in.Username, in.Password)
}

// ChangePassword replaces the password after checking the old one.
func (s *UserService) ChangePassword(ctx context.Context, id string, in PasswordChange) error {
	user, err := s.auth.AuthenticateByID(ctx, id, in.OldPW)
	if err != nil {
		return err
	}
	hashed, err := s.hasher.Hash(in.NewPW)
	if err != nil {
		return apperr.E(apperr.KindInternal, "hash password", err)
	}
	return s.users.Update(ctx, user.Hex(), bson.M{"pw": hashed})
}

// ChangeBuyerInfo updates a buyer's profile. tokenScope comes from the
// verified access token and must match the account.
func (s *UserService) ChangeBuyerInfo(ctx context.Context, id string, tokenScope auth.Scope, in BuyerInfo) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rbac.Match(tokenScope, user.Scope); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, id, bson.M{"name": in.Name, "gender": in.Gender, "age": in.Age}); err != nil {
		return nil, err
	}
	user.Name, user.Gender, user.Age = in.Name, in.Gender, in.Age
	return user, nil
}

// ChangeSellerStore points a seller at an existing store.
func (s *UserService) ChangeSellerStore(ctx context.Context, id string, tokenScope auth.Scope, in SellerStore) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rbac.Match(tokenScope, user.Scope); err != nil {
		return nil, err
	}
	if _, err := s.stores.FindByID(ctx, in.StoreID); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, id, bson.M{"s_id": in.StoreID}); err != nil {
		return nil, err
	}
	user.StoreID = in.StoreID
	return user, nil
}

// IssueAccess mints an access token for the holder of a current refresh
// token.
func (s *UserService) IssueAccess(ctx context.Context, id string, claims *auth.RefreshClaims, raw string) (string, error) {
	user, err := s.owner(ctx, id, claims, raw)
	if err != nil {
		return "", err
	}
	tok, err := s.tokens.IssueAccessToken(user.Scope)
	if err != nil {
		return "", err
	}
	metrics.TokensIssued.WithLabelValues("access").Inc()
	return tok, nil
}

// IssueRefresh rotates the refresh token. The stored slot is overwritten,
// so the presented token stops working.
func (s *UserService) IssueRefresh(ctx context.Context, id string, claims *auth.RefreshClaims, raw string) (string, error) {
	user, err := s.owner(ctx, id, claims, raw)
	if err != nil {
		return "", err
	}
	tok, err := s.tokens.RotateRefreshToken(claims, user.Hex(), user.Scope)
	if err != nil {
		return "", err
	}
	if err := s.users.SetRefreshToken(ctx, user.Hex(), tok); err != nil {
		return "", err
	}
	metrics.TokensIssued.WithLabelValues("refresh").Inc()
	logger.WithCtx(ctx).Debug("refresh token rotated", "u_id", user.Hex())
	return tok, nil
}

// Logout empties the refresh slot.
func (s *UserService) Logout(ctx context.Context, id string, claims *auth.RefreshClaims, raw string) error {
	user, err := s.owner(ctx, id, claims, raw)
	if err != nil {
		return err
	}
	if err := s.users.SetRefreshToken(ctx, user.Hex(), ""); err != nil {
		return err
	}
	logger.WithCtx(ctx).Info("user logged out", "u_id", user.Hex())
	return nil
}

// owner checks, in order: the token subject is id, the user exists, the
// token scope matches the account, and the token is the one on file.
func (s *UserService) owner(ctx context.Context, id string, claims *auth.RefreshClaims, raw string) (*models.User, error) {
	if _, err := repositories.ParseID(id); err != nil {
		return nil, err
	}
	if claims == nil || claims.Subject != id {
		return nil, apperr.E(apperr.KindRevokedToken, "Ownership verification failed.", nil)
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rbac.Match(claims.Scope, user.Scope); err != nil {
		return nil, err
	}
	if user.RToken == "" || user.RToken != raw {
		return nil, apperr.E(apperr.KindRevokedToken, "Ownership verification failed.", nil)
	}
	return user, nil
}
