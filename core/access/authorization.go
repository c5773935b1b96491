// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*
Package access provides utilities for access control

Callers present a JWT bearer token issued by an external OAuth2 authority.
The Verifier checks signature, expiry, audience and issuer against the
authority's JSON web key set. The Gate wraps a handler, requires one
permission from the token's "permissions" claim and stores the verified
claims in the request context:

	router.Handle("/drinks", gate.Require("post:drinks", handler))

and inside the handler

	claims := access.ClaimsFromContext(r.Context())
*/
package access

import (
	"context"

	"github.com/golang-jwt/jwt/v4"
)

// contextKey is the type for context keys. Go linter does not like plain strings
type contextKey string

// the predefined context key
const (
	contextKeyClaims contextKey = "_claims_"
)

// Claims are the decoded claims of a verified bearer token
type Claims struct {
	// Permissions is nil if the token carries no permissions claim at all
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// HasPermission returns true if the claims contain the requested permission;
// otherwise it returns false.
func (c *Claims) HasPermission(permission string) bool {
	if c == nil {
		return false
	}
	for _, has := range c.Permissions {
		if has == permission {
			return true
		}
	}
	return false
}

// CheckPermission returns nil if claims grant permission. A token without a
// permissions claim is malformed and reported as invalid_claims (400), a
// token lacking the permission as unauthorized (403).
func CheckPermission(claims *Claims, permission string) *AuthError {
	if claims == nil || claims.Permissions == nil {
		return errPermissionsMissing()
	}
	if !claims.HasPermission(permission) {
		return errPermissionNotFound()
	}
	return nil
}

// ContextWithClaims returns a new context with the claims added to it
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, contextKeyClaims, claims)
}

// ClaimsFromContext retrieves the claims from the context
func ClaimsFromContext(ctx context.Context) *Claims {
	c, ok := ctx.Value(contextKeyClaims).(*Claims)
	if ok {
		return c
	}
	return nil
}
