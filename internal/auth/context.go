// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package auth

import "context"

type claimsKey struct{}

// WithUser returns ctx carrying the authenticated user's claims.
func WithUser(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// UserFrom returns the claims stored by WithUser.
func UserFrom(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(Claims)
	return c, ok
}
