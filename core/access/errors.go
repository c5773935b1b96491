// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package access

import (
	"errors"
	"net/http"
)

// Error codes carried by AuthError
const (
	CodeMissingAuthorizationHeader = "missing_authorization_header"
	CodeInvalidHeader              = "invalid_header"
	CodeTokenExpired               = "token_expired"
	CodeInvalidClaims              = "invalid_claims"
	CodeUnauthorized               = "unauthorized"
)

// AuthError is an authentication or authorization fault. StatusCode is the
// status the fault stands for; the backend reports all auth faults over
// HTTP 401 and puts StatusCode into the response body.
type AuthError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	StatusCode  int    `json:"-"`
}

func (e *AuthError) Error() string {
	return e.Code + ": " + e.Description
}

// NewAuthError returns a new AuthError
func NewAuthError(code, description string, statusCode int) *AuthError {
	return &AuthError{Code: code, Description: description, StatusCode: statusCode}
}

func errMissingHeader() *AuthError {
	return NewAuthError(CodeMissingAuthorizationHeader, "Authorization header is expected.", http.StatusUnauthorized)
}

func errInvalidHeader(description string) *AuthError {
	return NewAuthError(CodeInvalidHeader, description, http.StatusUnauthorized)
}

func errTokenExpired() *AuthError {
	return NewAuthError(CodeTokenExpired, "Token expired.", http.StatusUnauthorized)
}

func errIncorrectClaims() *AuthError {
	return NewAuthError(CodeInvalidClaims, "Incorrect claims. Please, check the audience and issuer.", http.StatusUnauthorized)
}

func errPermissionsMissing() *AuthError {
	return NewAuthError(CodeInvalidClaims, "Permissions not included in JWT.", http.StatusBadRequest)
}

func errPermissionNotFound() *AuthError {
	return NewAuthError(CodeUnauthorized, "Permission not found.", http.StatusForbidden)
}

// AsAuthError returns err as *AuthError. Errors of any other kind become an
// invalid_header fault, so callers always fail closed.
func AsAuthError(err error) *AuthError {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr
	}
	return errInvalidHeader("Unable to parse authentication token.")
}
