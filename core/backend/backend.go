// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/relabs-tech/coffeeshop/core"
	"github.com/relabs-tech/coffeeshop/core/access"
	"github.com/relabs-tech/coffeeshop/core/csql"
	"github.com/relabs-tech/coffeeshop/core/drink"
	"github.com/relabs-tech/coffeeshop/core/logger"
	"github.com/relabs-tech/coffeeshop/core/schema"
)

// Backend is the coffee shop rest backend
type Backend struct {
	db        *csql.DB
	router    *mux.Router
	store     *drink.Store
	gate      *access.Gate
	validator *schema.Validator
	notifier  core.Notifier
}

// Builder is a builder helper for the Backend
type Builder struct {
	// DB is a postgres or sqlite database. This is mandatory.
	DB *csql.DB
	// Router is a mux router. This is mandatory.
	Router *mux.Router
	// Verifier verifies bearer tokens of protected routes. This is mandatory.
	Verifier access.TokenVerifier
	// Notifier receives every successful drink change. This is optional.
	Notifier core.Notifier
}

// New realizes the actual backend. It creates the drink table (if it does
// not exist) and adds actual routes to router
func New(bb *Builder) *Backend {
	if bb.DB == nil {
		panic("DB is missing")
	}
	if bb.Router == nil {
		panic("Router is missing")
	}
	if bb.Verifier == nil {
		panic("Verifier is missing")
	}

	validator, err := drink.NewValidator()
	if err != nil {
		panic(fmt.Errorf("cannot load drink schema: %w", err))
	}

	b := &Backend{
		db:        bb.DB,
		router:    bb.Router,
		store:     drink.NewStore(bb.DB),
		validator: validator,
		notifier:  bb.Notifier,
	}
	b.gate = access.NewGate(bb.Verifier, b.authError)

	if err := b.store.CreateTable(context.Background()); err != nil {
		panic(err)
	}

	b.router.Use(handlers.RecoveryHandler(
		handlers.RecoveryLogger(logger.Default()),
		handlers.PrintRecoveryStack(true),
	))
	logger.AddRequestID(b.router)
	b.handleCORS()
	b.handleCompression()
	b.handleRoutes()
	return b
}

// Store returns the drink store of the backend
func (b *Backend) Store() *drink.Store {
	return b.store
}

func (b *Backend) handleRoutes() {
	rlog := logger.Default()
	rlog.Debugln("backend: HandleRoutes")

	route := func(path string, method string, handler http.Handler) {
		rlog.Debugln("  handle route:", path, method)
		b.router.Handle(path, handler).Methods(method, http.MethodOptions)
	}

	itemPath := "/drinks/{drink_id:[0-9]+}"
	route("/drinks", http.MethodGet, http.HandlerFunc(b.listDrinks))
	route("/drinks-detail", http.MethodGet, b.gate.RequireFunc("get:drinks-detail", b.listDrinksDetail))
	route("/drinks", http.MethodPost, b.gate.RequireFunc("post:drinks", b.createDrink))
	route(itemPath, http.MethodPatch, b.gate.RequireFunc("patch:drinks", b.updateDrink))
	route(itemPath, http.MethodDelete, b.gate.RequireFunc("delete:drinks", b.deleteDrink))

	// mux skips middlewares for unmatched requests
	b.router.NotFoundHandler = logger.RequestIDMiddleware(corsMiddleware(http.HandlerFunc(b.notFound)))
	b.router.MethodNotAllowedHandler = logger.RequestIDMiddleware(corsMiddleware(http.HandlerFunc(b.methodNotAllowed)))
}
