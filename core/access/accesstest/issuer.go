// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

// Package accesstest provides a token issuer with a JSON web key set
// endpoint for tests
package accesstest

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/relabs-tech/coffeeshop/core/access"
)

// Issuer signs tokens with an RSA key and serves the matching key set
type Issuer struct {
	// Issuer is the "iss" claim of issued tokens, the server URL with a trailing slash
	Issuer string
	// Audience is the "aud" claim of issued tokens
	Audience string
	// KeyID is the "kid" header of issued tokens
	KeyID string

	key    *rsa.PrivateKey
	server *httptest.Server
	hits   int64
	status int64
}

// NewIssuer starts an issuer. Close it when done.
func NewIssuer(audience string) *Issuer {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	i := &Issuer{
		Audience: audience,
		KeyID:    uuid.New().String(),
		key:      key,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/jwks.json", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&i.hits, 1)
		if status := atomic.LoadInt64(&i.status); status != 0 {
			w.WriteHeader(int(status))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(i.KeySet())
	})
	i.server = httptest.NewServer(mux)
	i.Issuer = i.server.URL + "/"
	return i
}

// JWKSURL is the download url of the key set
func (i *Issuer) JWKSURL() string {
	return i.server.URL + "/.well-known/jwks.json"
}

// Fail makes the key set endpoint answer with status. Zero restores normal
// operation.
func (i *Issuer) Fail(status int) {
	atomic.StoreInt64(&i.status, int64(status))
}

// KeySet returns the public key set
func (i *Issuer) KeySet() *access.JWKS {
	pub := &i.key.PublicKey
	return &access.JWKS{Keys: []access.JWK{{
		KeyType:   "RSA",
		Use:       "sig",
		KeyID:     i.KeyID,
		Algorithm: "RS256",
		N:         base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		E:         base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}}}
}

// Hits returns how often the key set was downloaded
func (i *Issuer) Hits() int {
	return int(atomic.LoadInt64(&i.hits))
}

// Close stops the key set endpoint
func (i *Issuer) Close() {
	i.server.Close()
}

// Claims returns valid claims for one hour with the given permissions
func (i *Issuer) Claims(permissions ...string) *access.Claims {
	if permissions == nil {
		permissions = []string{}
	}
	now := time.Now()
	return &access.Claims{
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.Issuer,
			Subject:   "auth0|" + uuid.New().String(),
			Audience:  jwt.ClaimStrings{i.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

// Token returns a valid token with the given permissions
func (i *Issuer) Token(permissions ...string) string {
	return i.TokenWithClaims(i.Claims(permissions...))
}

// ExpiredToken returns a token that expired a minute ago
func (i *Issuer) ExpiredToken(permissions ...string) string {
	claims := i.Claims(permissions...)
	claims.IssuedAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	return i.TokenWithClaims(claims)
}

// TokenWithoutPermissions returns a valid token that has no permissions claim
func (i *Issuer) TokenWithoutPermissions() string {
	return i.TokenWithClaims(&i.Claims().RegisteredClaims)
}

// TokenWithClaims signs arbitrary claims with the issuer's key
func (i *Issuer) TokenWithClaims(claims jwt.Claims) string {
	return i.sign(claims, i.KeyID, i.key)
}

// ForeignToken returns a token with the issuer's key ID but signed by another key
func (i *Issuer) ForeignToken(permissions ...string) string {
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	return i.sign(i.Claims(permissions...), i.KeyID, other)
}

// TokenWithKeyID returns a token carrying the given key ID. An empty kid
// omits the header.
func (i *Issuer) TokenWithKeyID(kid string, permissions ...string) string {
	return i.sign(i.Claims(permissions...), kid, i.key)
}

func (i *Issuer) sign(claims jwt.Claims, kid string, key *rsa.PrivateKey) string {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	signed, err := token.SignedString(key)
	if err != nil {
		panic(err)
	}
	return signed
}
