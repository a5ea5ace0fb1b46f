package auth

import "context"

type accessKey struct{}
type refreshKey struct{}

// Verified refresh tokens travel with their raw form so handlers can compare
// it against the stored slot.
type refreshValue struct {
	claims *RefreshClaims
	raw    string
}

// WithAccessClaims stores verified access claims in ctx.
func WithAccessClaims(ctx context.Context, c *AccessClaims) context.Context {
	return context.WithValue(ctx, accessKey{}, c)
}

// AccessClaimsFrom returns the claims stored by WithAccessClaims.
func AccessClaimsFrom(ctx context.Context) (*AccessClaims, bool) {
	c, ok := ctx.Value(accessKey{}).(*AccessClaims)
	return c, ok && c != nil
}

// WithRefreshToken stores a verified refresh token and its claims in ctx.
func WithRefreshToken(ctx context.Context, c *RefreshClaims, raw string) context.Context {
	return context.WithValue(ctx, refreshKey{}, refreshValue{claims: c, raw: raw})
}

// RefreshTokenFrom returns the claims and raw token stored by WithRefreshToken.
func RefreshTokenFrom(ctx context.Context) (*RefreshClaims, string, bool) {
	v, ok := ctx.Value(refreshKey{}).(refreshValue)
	if !ok || v.claims == nil {
		return nil, "", false
	}
	return v.claims, v.raw, true
}
