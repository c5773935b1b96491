// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package access

import (
	"context"
	"crypto/rsa"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/relabs-tech/coffeeshop/core/logger"
)

// KeyProvider looks up the public key for a key ID. KeySet implements it.
type KeyProvider interface {
	Key(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// TokenVerifier verifies the bearer token of a request
type TokenVerifier interface {
	VerifyRequest(r *http.Request) (*Claims, error)
}

var errMissingKeyID = errors.New("token header has no kid")

// Verifier validates RS256 bearer tokens against a key set, an issuer and an audience
type Verifier struct {
	keys     KeyProvider
	issuer   string
	audience string
	parser   *jwt.Parser
}

// NewVerifier returns a verifier. Issuer is the expected "iss" claim,
// for Auth0 "https://{domain}/", audience the expected "aud" claim.
func NewVerifier(keys KeyProvider, issuer, audience string) *Verifier {
	if keys == nil {
		panic("keys are missing")
	}
	return &Verifier{
		keys:     keys,
		issuer:   issuer,
		audience: audience,
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()})),
	}
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingHeader()
	}
	parts := strings.Split(header, " ")
	if !strings.EqualFold(parts[0], "bearer") {
		return "", errInvalidHeader(`Authorization header must start with "Bearer".`)
	}
	if len(parts) == 1 || parts[1] == "" {
		return "", errInvalidHeader("Token not found.")
	}
	if len(parts) > 2 {
		return "", errInvalidHeader("Authorization header must be bearer token.")
	}
	return parts[1], nil
}

// VerifyRequest verifies the bearer token in the Authorization header of r
func (v *Verifier) VerifyRequest(r *http.Request) (*Claims, error) {
	token, err := BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}
	return v.Verify(r.Context(), token)
}

// Verify verifies a raw token and returns its claims. All errors are of
// type *AuthError.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		kid, ok := t.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, errMissingKeyID
		}
		key, err := v.keys.Key(ctx, kid)
		if err != nil {
			return nil, err
		}
		return key, nil
	})

	if err != nil {
		logger.FromContext(ctx).WithError(err).Debugln("token rejected")
		switch {
		case errors.Is(err, errMissingKeyID):
			return nil, errInvalidHeader("Authorization malformed.")
		case errors.Is(err, ErrKeyNotFound):
			return nil, errInvalidHeader("Unable to find the appropriate key.")
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, errInvalidHeader("Unable to parse authentication token.")
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, errTokenExpired()
		}
		return nil, errInvalidHeader("Unable to parse authentication token.")
	}
	if !token.Valid {
		return nil, errInvalidHeader("Unable to parse authentication token.")
	}

	if !claims.VerifyAudience(v.audience, true) || !claims.VerifyIssuer(v.issuer, true) {
		return nil, errIncorrectClaims()
	}
	return claims, nil
}
