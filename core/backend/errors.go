// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package backend

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/relabs-tech/coffeeshop/core/access"
	"github.com/relabs-tech/coffeeshop/core/drink"
	"github.com/relabs-tech/coffeeshop/core/logger"
)

// errorResponse is the envelope of every failed request. Message is a string,
// or the *access.AuthError for auth faults.
type errorResponse struct {
	Success bool        `json:"success"`
	Error   int         `json:"error"`
	Message interface{} `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	j, err := json.Marshal(body)
	if err != nil {
		logger.FromContext(r.Context()).WithError(err).Errorln("cannot marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(j)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, errorResponse{Error: status, Message: message})
}

func (b *Backend) notFound(w http.ResponseWriter, r *http.Request) {
	logger.FromContext(r.Context()).Debugln("no route for", r.URL, r.Method)
	writeError(w, r, http.StatusNotFound, "resource not found")
}

func (b *Backend) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	logger.FromContext(r.Context()).Debugln("method not allowed", r.URL, r.Method)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func unprocessable(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusUnprocessableEntity, "unprocessable")
}

func internalError(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}

// authError always answers with 401, the status of the fault goes into the body
func (b *Backend) authError(w http.ResponseWriter, r *http.Request, err *access.AuthError) {
	writeJSON(w, r, http.StatusUnauthorized, errorResponse{Error: err.StatusCode, Message: err})
}

// storeError maps drink store errors to the error envelopes
func storeError(w http.ResponseWriter, r *http.Request, err error) {
	rlog := logger.FromContext(r.Context())
	switch {
	case errors.Is(err, drink.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "resource not found")
	case errors.Is(err, drink.ErrConflict):
		rlog.WithError(err).Infoln("title conflict")
		unprocessable(w, r)
	case errors.Is(err, drink.ErrInvalid):
		rlog.WithError(err).Infoln("invalid drink")
		unprocessable(w, r)
	default:
		rlog.WithError(err).Errorln("storage failure")
		internalError(w, r)
	}
}
