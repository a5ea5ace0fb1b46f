package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/shashiranjanraj/foodineye/pkg/apperr"
)

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// AccessClaims is the payload of a short-lived access token. It carries no
// subject: an access token is a bare capability for one scope.
type AccessClaims struct {
	Scope Scope  `json:"scope"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token. Subject is the user's
// internal id.
type RefreshClaims struct {
	Scope Scope  `json:"scope"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenConfig configures a TokenManager.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenManager issues and verifies HS256 access and refresh tokens.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenManager builds a manager. Zero TTLs fall back to 30 minutes for
// access tokens and 14 days for refresh tokens.
func NewTokenManager(cfg TokenConfig) *TokenManager {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 30 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 14 * 24 * time.Hour
	}
	if cfg.RefreshSecret == "" {
		cfg.RefreshSecret = cfg.AccessSecret
	}
	return &TokenManager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}
}

// WithClock replaces the time source used for issuing and verifying.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	tm.now = now
	return tm
}

// IssueAccessToken signs a short-lived token for scope.
func (tm *TokenManager) IssueAccessToken(scope Scope) (string, error) {
	if !scope.Valid() {
		return "", apperr.Validation("unknown scope")
	}
	claims := AccessClaims{
		Scope:            scope,
		Type:             typeAccess,
		RegisteredClaims: tm.registered("", tm.accessTTL),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.accessSecret)
}

// IssueRefreshToken signs a long-lived token bound to subject and scope.
func (tm *TokenManager) IssueRefreshToken(subject string, scope Scope) (string, error) {
	if !scope.Valid() {
		return "", apperr.Validation("unknown scope")
	}
	if subject == "" {
		return "", apperr.Validation("refresh token needs a subject")
	}
	claims := RefreshClaims{
		Scope:            scope,
		Type:             typeRefresh,
		RegisteredClaims: tm.registered(subject, tm.refreshTTL),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.refreshSecret)
}

// RotateRefreshToken issues a replacement for old. The caller persists the
// result; overwriting the stored value is what revokes old.
func (tm *TokenManager) RotateRefreshToken(old *RefreshClaims, subject string, scope Scope) (string, error) {
	if old == nil || old.Subject != subject {
		return "", apperr.Scope("refresh token does not belong to this user")
	}
	if old.Scope != scope {
		return "", apperr.Scope("refresh token scope does not match")
	}
	return tm.IssueRefreshToken(subject, scope)
}

// VerifyAccessToken checks signature, expiry and token type.
func (tm *TokenManager) VerifyAccessToken(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := tm.parse(raw, claims, tm.accessSecret); err != nil {
		return nil, err
	}
	if claims.Type != typeAccess || !claims.Scope.Valid() {
		return nil, apperr.E(apperr.KindInvalidSignature, "not an access token", nil)
	}
	return claims, nil
}

// VerifyRefreshToken checks signature, expiry and token type.
func (tm *TokenManager) VerifyRefreshToken(raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := tm.parse(raw, claims, tm.refreshSecret); err != nil {
		return nil, err
	}
	if claims.Type != typeRefresh || !claims.Scope.Valid() || claims.Subject == "" {
		return nil, apperr.E(apperr.KindInvalidSignature, "not a refresh token", nil)
	}
	return claims, nil
}

func (tm *TokenManager) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := tm.now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (tm *TokenManager) parse(raw string, claims jwt.Claims, secret []byte) error {
	if raw == "" {
		return apperr.E(apperr.KindInvalidSignature, "missing token", nil)
	}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return apperr.E(apperr.KindExpiredToken, "token expired", err)
		}
		return apperr.E(apperr.KindInvalidSignature, "invalid token", err)
	}
	if !token.Valid {
		return apperr.E(apperr.KindInvalidSignature, "invalid token", nil)
	}
	if exp, _ := claims.GetExpirationTime(); exp == nil {
		return apperr.E(apperr.KindInvalidSignature, "token has no expiry", nil)
	}
	return nil
}
