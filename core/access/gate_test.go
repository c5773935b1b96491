package access_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relabs-tech/coffeeshop/core/access"
	"github.com/relabs-tech/coffeeshop/core/access/accesstest"
)

func TestGate(t *testing.T) {
	issuer := accesstest.NewIssuer("coffee")
	defer issuer.Close()

	var rejected *access.AuthError
	gate := access.NewGate(newVerifier(issuer), func(w http.ResponseWriter, r *http.Request, err *access.AuthError) {
		rejected = err
		w.WriteHeader(http.StatusUnauthorized)
	})

	var subject string
	handler := gate.RequireFunc("post:drinks", func(w http.ResponseWriter, r *http.Request) {
		claims := access.ClaimsFromContext(r.Context())
		subject = claims.Subject
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		token      string
		status     int
		code       string
		authStatus int
	}{
		{"granted", issuer.Token("get:drinks-detail", "post:drinks"), http.StatusOK, "", 0},
		{"missing permission", issuer.Token("get:drinks-detail"), http.StatusUnauthorized, access.CodeUnauthorized, http.StatusForbidden},
		{"no permissions claim", issuer.TokenWithoutPermissions(), http.StatusUnauthorized, access.CodeInvalidClaims, http.StatusBadRequest},
		{"expired", issuer.ExpiredToken("post:drinks"), http.StatusUnauthorized, access.CodeTokenExpired, http.StatusUnauthorized},
		{"no header", "", http.StatusUnauthorized, access.CodeMissingAuthorizationHeader, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rejected, subject = nil, ""
			r := httptest.NewRequest(http.MethodPost, "/drinks", nil)
			if tt.token != "" {
				r.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			assert.Equal(t, tt.status, w.Code)
			if tt.code == "" {
				assert.Nil(t, rejected)
				assert.NotEmpty(t, subject)
				return
			}
			if assert.NotNil(t, rejected) {
				assert.Equal(t, tt.code, rejected.Code)
				assert.Equal(t, tt.authStatus, rejected.StatusCode)
			}
			assert.Empty(t, subject)
		})
	}
}

func TestCheckPermission(t *testing.T) {
	assert.Equal(t, access.CodeInvalidClaims, access.CheckPermission(nil, "x").Code)
	assert.Equal(t, access.CodeInvalidClaims, access.CheckPermission(&access.Claims{}, "x").Code)
	assert.Equal(t, access.CodeUnauthorized, access.CheckPermission(&access.Claims{Permissions: []string{}}, "x").Code)
	assert.Nil(t, access.CheckPermission(&access.Claims{Permissions: []string{"x"}}, "x"))
}
