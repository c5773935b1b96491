// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package backend

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/relabs-tech/coffeeshop/core"
	"github.com/relabs-tech/coffeeshop/core/drink"
	"github.com/relabs-tech/coffeeshop/core/logger"
)

// maxBodySize limits create and update request bodies
const maxBodySize = 1 << 20

type drinksResponse struct {
	Success bool        `json:"success"`
	Drinks  interface{} `json:"drinks"`
}

type deleteResponse struct {
	Success bool `json:"success"`
	Delete  int  `json:"delete"`
}

func (b *Backend) listDrinks(w http.ResponseWriter, r *http.Request) {
	logger.FromContext(r.Context()).Debugln("called route for", r.URL, r.Method)
	drinks, err := b.store.List(r.Context())
	if err != nil {
		storeError(w, r, err)
		return
	}
	views := make([]drink.ShortView, len(drinks))
	for i, d := range drinks {
		views[i] = d.Short()
	}
	writeJSON(w, r, http.StatusOK, drinksResponse{Success: true, Drinks: views})
}

func (b *Backend) listDrinksDetail(w http.ResponseWriter, r *http.Request) {
	logger.FromContext(r.Context()).Debugln("called route for", r.URL, r.Method)
	drinks, err := b.store.List(r.Context())
	if err != nil {
		storeError(w, r, err)
		return
	}
	views := make([]drink.LongView, len(drinks))
	for i, d := range drinks {
		views[i] = d.Long()
	}
	writeJSON(w, r, http.StatusOK, drinksResponse{Success: true, Drinks: views})
}

func (b *Backend) createDrink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rlog := logger.FromContext(ctx)
	rlog.Debugln("called route for", r.URL, r.Method)

	payload, err := b.readPayload(w, r)
	if err != nil {
		storeError(w, r, err)
		return
	}
	d := &drink.Drink{}
	payload.Apply(d)
	if err := b.store.Insert(ctx, d); err != nil {
		storeError(w, r, err)
		return
	}
	rlog.Infoln("created drink", d.ID, d.Title)
	b.notify(ctx, core.OperationCreate, d)
	writeJSON(w, r, http.StatusOK, drinksResponse{Success: true, Drinks: []drink.LongView{d.Long()}})
}

func (b *Backend) updateDrink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rlog := logger.FromContext(ctx)
	rlog.Debugln("called route for", r.URL, r.Method)

	id, ok := drinkID(r)
	if !ok {
		b.notFound(w, r)
		return
	}
	d, err := b.store.Find(ctx, id)
	if err != nil {
		storeError(w, r, err)
		return
	}
	payload, err := b.readPayload(w, r)
	if err != nil {
		storeError(w, r, err)
		return
	}
	payload.Apply(d)
	if err := b.store.Update(ctx, d); err != nil {
		storeError(w, r, err)
		return
	}
	rlog.Infoln("updated drink", d.ID, d.Title)
	b.notify(ctx, core.OperationUpdate, d)
	writeJSON(w, r, http.StatusOK, drinksResponse{Success: true, Drinks: []drink.LongView{d.Long()}})
}

func (b *Backend) deleteDrink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rlog := logger.FromContext(ctx)
	rlog.Debugln("called route for", r.URL, r.Method)

	id, ok := drinkID(r)
	if !ok {
		b.notFound(w, r)
		return
	}
	d, err := b.store.Find(ctx, id)
	if err != nil {
		storeError(w, r, err)
		return
	}
	if err := b.store.Delete(ctx, d); err != nil {
		storeError(w, r, err)
		return
	}
	rlog.Infoln("deleted drink", d.ID, d.Title)
	b.notify(ctx, core.OperationDelete, d)
	writeJSON(w, r, http.StatusOK, deleteResponse{Success: true, Delete: d.ID})
}

// readPayload reads and validates the request body. Errors wrap drink.ErrInvalid.
func (b *Backend) readPayload(w http.ResponseWriter, r *http.Request) (*drink.Payload, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", drink.ErrInvalid, err)
	}
	return drink.ParsePayload(b.validator, body)
}

func drinkID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["drink_id"])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
