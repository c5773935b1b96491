// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package access

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/relabs-tech/coffeeshop/core/logger"
	"github.com/relabs-tech/coffeeshop/core/registry"
)

// ErrKeyNotFound is returned when the key set has no key for a key ID
var ErrKeyNotFound = errors.New("no key for key ID")

// JWKS represents a JSON Web Key Set.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK represents a single JSON Web Key. Only RSA keys are used.
type JWK struct {
	KeyType   string   `json:"kty"`
	Use       string   `json:"use,omitempty"`
	KeyID     string   `json:"kid"`
	Algorithm string   `json:"alg,omitempty"`
	N         string   `json:"n,omitempty"`
	E         string   `json:"e,omitempty"`
	X5C       []string `json:"x5c,omitempty"`
}

// KeySetBuilder is a builder helper for the KeySet
type KeySetBuilder struct {
	// URL is the download url for the JSON web key set, for Auth0 this is
	// "https://{domain}/.well-known/jwks.json". This is mandatory.
	URL string
	// Registry persists the downloaded key set. This is optional.
	Registry *registry.Registry
	// RefreshInterval is the age after which a key set is downloaded again.
	// Defaults to 6 hours.
	RefreshInterval time.Duration
	// MinRefetchInterval limits downloads caused by unknown key IDs.
	// Defaults to 1 minute.
	MinRefetchInterval time.Duration
	// HTTPClient defaults to a client with a 10 second timeout
	HTTPClient *http.Client
}

// KeySet is a cached JSON web key set. It is safe for concurrent use.
type KeySet struct {
	url                string
	accessor           *registry.Accessor
	refreshInterval    time.Duration
	minRefetchInterval time.Duration
	httpClient         *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time

	fetchMu     sync.Mutex
	lastAttempt time.Time
}

// NewKeySet returns a key set. It does not download anything yet, call Load
// for that or let the first Key call do it.
func NewKeySet(b *KeySetBuilder) *KeySet {
	if b.URL == "" {
		panic("URL is missing")
	}
	k := &KeySet{
		url:                b.URL,
		refreshInterval:    b.RefreshInterval,
		minRefetchInterval: b.MinRefetchInterval,
		httpClient:         b.HTTPClient,
		keys:               map[string]*rsa.PublicKey{},
	}
	if k.refreshInterval <= 0 {
		k.refreshInterval = 6 * time.Hour
	}
	if k.minRefetchInterval <= 0 {
		k.minRefetchInterval = time.Minute
	}
	if k.httpClient == nil {
		k.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if b.Registry != nil {
		accessor := b.Registry.Accessor("_jwks_")
		k.accessor = &accessor
	}
	return k
}

// Load initializes the key set, from the registry if the persisted set is
// still fresh, otherwise from the URL.
func (k *KeySet) Load(ctx context.Context) error {
	rlog := logger.FromContext(ctx)
	if k.accessor != nil {
		var jwks JWKS
		writtenAt, err := k.accessor.Read(k.url, &jwks)
		if err != nil {
			rlog.WithError(err).Warnln("cannot read key set from registry")
		} else if !writtenAt.IsZero() && time.Since(writtenAt) < k.refreshInterval {
			k.install(ctx, &jwks, writtenAt)
			rlog.Infof("loaded %d keys for %s from registry", len(jwks.Keys), k.url)
			return nil
		}
	}
	return k.Refresh(ctx)
}

// Refresh downloads the key set and replaces the cached keys
func (k *KeySet) Refresh(ctx context.Context) error {
	k.fetchMu.Lock()
	defer k.fetchMu.Unlock()
	return k.refreshLocked(ctx)
}

func (k *KeySet) refreshLocked(ctx context.Context) error {
	k.lastAttempt = time.Now()
	jwks, err := k.download(ctx)
	if err != nil {
		return err
	}
	k.install(ctx, jwks, time.Now())
	if k.accessor != nil {
		if err := k.accessor.Write(k.url, jwks); err != nil {
			logger.FromContext(ctx).WithError(err).Warnln("cannot persist key set")
		}
	}
	return nil
}

// Key returns the public key for kid. An unknown kid or a stale key set
// triggers a download, at most once per MinRefetchInterval. In between, a
// stale key is served as is.
func (k *KeySet) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	k.mu.RLock()
	key, ok := k.keys[kid]
	stale := time.Since(k.fetchedAt) > k.refreshInterval
	k.mu.RUnlock()
	if ok && !stale {
		return key, nil
	}

	k.fetchMu.Lock()
	defer k.fetchMu.Unlock()

	// another request may have refreshed while we waited
	k.mu.RLock()
	key, ok = k.keys[kid]
	stale = time.Since(k.fetchedAt) > k.refreshInterval
	k.mu.RUnlock()
	if ok && !stale {
		return key, nil
	}

	if time.Since(k.lastAttempt) >= k.minRefetchInterval {
		if err := k.refreshLocked(ctx); err != nil {
			logger.FromContext(ctx).WithError(err).Errorln("cannot download key set")
			if ok {
				// keep serving the stale key while the issuer is unreachable
				return key, nil
			}
			return nil, err
		}
		k.mu.RLock()
		key, ok = k.keys[kid]
		k.mu.RUnlock()
	}
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrKeyNotFound, kid)
	}
	return key, nil
}

// Len returns the number of cached keys
func (k *KeySet) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.keys)
}

func (k *KeySet) install(ctx context.Context, jwks *JWKS, fetchedAt time.Time) {
	keys := make(map[string]*rsa.PublicKey, len(jwks.Keys))
	for i := range jwks.Keys {
		jwk := &jwks.Keys[i]
		if jwk.KeyID == "" || jwk.KeyType != "RSA" || (jwk.Use != "" && jwk.Use != "sig") {
			continue
		}
		key, err := jwkToRSAPublicKey(jwk)
		if err != nil {
			logger.FromContext(ctx).WithError(err).Warnln("skipping key", jwk.KeyID)
			continue
		}
		keys[jwk.KeyID] = key
	}
	k.mu.Lock()
	k.keys = keys
	k.fetchedAt = fetchedAt
	k.mu.Unlock()
}

func (k *KeySet) download(ctx context.Context) (*JWKS, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.url, nil)
	if err != nil {
		return nil, err
	}
	res, err := k.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot download key set from %s: %w", k.url, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("key set endpoint %s returned status %d", k.url, res.StatusCode)
	}
	var jwks JWKS
	if err := json.NewDecoder(res.Body).Decode(&jwks); err != nil {
		return nil, fmt.Errorf("cannot decode key set from %s: %w", k.url, err)
	}
	return &jwks, nil
}

// jwkToRSAPublicKey converts a JWK to an RSA public key.
func jwkToRSAPublicKey(jwk *JWK) (*rsa.PublicKey, error) {
	if jwk.N == "" || jwk.E == "" {
		return nil, errors.New("missing RSA key parameters")
	}
	nBytes, err := base64URLDecode(jwk.N)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}
	eBytes, err := base64URLDecode(jwk.E)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}
	e := new(big.Int).SetBytes(eBytes)
	if !e.IsInt64() || e.Int64() < 2 || e.Int64() > 1<<31-1 {
		return nil, errors.New("invalid exponent")
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(e.Int64()),
	}, nil
}

// base64URLDecode decodes a base64url string with or without padding
func base64URLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
