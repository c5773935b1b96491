package access_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/coffeeshop/core/access"
	"github.com/relabs-tech/coffeeshop/core/access/accesstest"
)

func newVerifier(issuer *accesstest.Issuer) *access.Verifier {
	keys := access.NewKeySet(&access.KeySetBuilder{URL: issuer.JWKSURL()})
	return access.NewVerifier(keys, issuer.Issuer, issuer.Audience)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header      string
		token       string
		code        string
		description string
	}{
		{"", "", access.CodeMissingAuthorizationHeader, "Authorization header is expected."},
		{"Basic abc", "", access.CodeInvalidHeader, `Authorization header must start with "Bearer".`},
		{"Bearer", "", access.CodeInvalidHeader, "Token not found."},
		{"Bearer a b", "", access.CodeInvalidHeader, "Authorization header must be bearer token."},
		{"Bearer abc", "abc", "", ""},
		{"bearer abc", "abc", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, err := access.BearerToken(tt.header)
			if tt.code == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.token, token)
				return
			}
			authErr := access.AsAuthError(err)
			assert.Equal(t, tt.code, authErr.Code)
			assert.Equal(t, tt.description, authErr.Description)
			assert.Equal(t, 401, authErr.StatusCode)
		})
	}
}

func TestVerify(t *testing.T) {
	issuer := accesstest.NewIssuer("coffee")
	defer issuer.Close()
	verifier := newVerifier(issuer)

	claims, err := verifier.Verify(context.Background(), issuer.Token("get:drinks-detail"))
	require.NoError(t, err)
	assert.Equal(t, []string{"get:drinks-detail"}, claims.Permissions)
	assert.NotEmpty(t, claims.Subject)
}

func TestVerifyRejects(t *testing.T) {
	issuer := accesstest.NewIssuer("coffee")
	defer issuer.Close()
	verifier := newVerifier(issuer)

	wrongAudience := issuer.Claims("get:drinks-detail")
	wrongAudience.Audience = jwt.ClaimStrings{"tea"}
	wrongIssuer := issuer.Claims("get:drinks-detail")
	wrongIssuer.Issuer = "https://elsewhere.example.com/"
	hs256, err := jwt.NewWithClaims(jwt.SigningMethodHS256, issuer.Claims()).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name        string
		token       string
		code        string
		description string
	}{
		{"expired", issuer.ExpiredToken("get:drinks-detail"), access.CodeTokenExpired, "Token expired."},
		{"audience", issuer.TokenWithClaims(wrongAudience), access.CodeInvalidClaims, "Incorrect claims. Please, check the audience and issuer."},
		{"issuer", issuer.TokenWithClaims(wrongIssuer), access.CodeInvalidClaims, "Incorrect claims. Please, check the audience and issuer."},
		{"no kid", issuer.TokenWithKeyID(""), access.CodeInvalidHeader, "Authorization malformed."},
		{"unknown kid", issuer.TokenWithKeyID("unknown"), access.CodeInvalidHeader, "Unable to find the appropriate key."},
		{"foreign signature", issuer.ForeignToken(), access.CodeInvalidHeader, "Unable to parse authentication token."},
		{"garbage", "not.a.token", access.CodeInvalidHeader, "Unable to parse authentication token."},
		{"hs256", hs256, access.CodeInvalidHeader, "Unable to parse authentication token."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := verifier.Verify(context.Background(), tt.token)
			assert.Nil(t, claims)
			var authErr *access.AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.code, authErr.Code)
			assert.Equal(t, tt.description, authErr.Description)
			assert.Equal(t, 401, authErr.StatusCode)
		})
	}
}

func TestVerifyRequest(t *testing.T) {
	issuer := accesstest.NewIssuer("coffee")
	defer issuer.Close()
	verifier := newVerifier(issuer)

	r := httptest.NewRequest("GET", "/drinks-detail", nil)
	_, err := verifier.VerifyRequest(r)
	assert.Equal(t, access.CodeMissingAuthorizationHeader, access.AsAuthError(err).Code)

	r.Header.Set("Authorization", "Bearer "+issuer.Token())
	claims, err := verifier.VerifyRequest(r)
	require.NoError(t, err)
	assert.Empty(t, claims.Permissions)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}
