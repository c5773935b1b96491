// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package access

import (
	"net/http"

	"github.com/relabs-tech/coffeeshop/core/logger"
)

// ErrorHandler renders an auth fault
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err *AuthError)

// Gate admits requests whose bearer token carries a required permission
type Gate struct {
	verifier TokenVerifier
	onError  ErrorHandler
}

// NewGate returns a gate. Rejected requests are passed to onError.
func NewGate(verifier TokenVerifier, onError ErrorHandler) *Gate {
	if verifier == nil {
		panic("verifier is missing")
	}
	if onError == nil {
		panic("error handler is missing")
	}
	return &Gate{verifier: verifier, onError: onError}
}

// Require wraps next. The token is verified first, then the permission is
// checked. Admitted requests carry the claims in their context.
func (g *Gate) Require(permission string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := g.verifier.VerifyRequest(r)
		if err != nil {
			g.reject(w, r, permission, AsAuthError(err))
			return
		}
		if authErr := CheckPermission(claims, permission); authErr != nil {
			g.reject(w, r, permission, authErr)
			return
		}

		ctx, rlog := logger.ContextWithLoggerIdentity(r.Context(), claims.Subject)
		rlog.Debugln("granted", permission)
		ctx = ContextWithClaims(ctx, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireFunc is Require for a handler function
func (g *Gate) RequireFunc(permission string, next http.HandlerFunc) http.Handler {
	return g.Require(permission, next)
}

func (g *Gate) reject(w http.ResponseWriter, r *http.Request, permission string, err *AuthError) {
	logger.FromContext(r.Context()).
		WithField("permission", permission).
		WithField("code", err.Code).
		Infoln("request rejected:", err.Description)
	g.onError(w, r, err)
}
