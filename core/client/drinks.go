// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package client

import (
	"strconv"

	"github.com/goccy/go-json"
)

// DrinksResponse is the success envelope of the list, create and update routes
type DrinksResponse struct {
	Success bool              `json:"success"`
	Drinks  []json.RawMessage `json:"drinks"`
}

// DeleteResponse is the success envelope of the delete route
type DeleteResponse struct {
	Success bool `json:"success"`
	Delete  int  `json:"delete"`
}

// ErrorResponse is the envelope of every failed request. Message is a string
// for not-found and unprocessable faults and an object for auth faults.
type ErrorResponse struct {
	Success bool            `json:"success"`
	Error   int             `json:"error"`
	Message json.RawMessage `json:"message"`
}

// Drinks is a client for the drink routes
type Drinks struct {
	client Client
}

// Drinks returns a client for the drink routes
func (c Client) Drinks() Drinks {
	return Drinks{client: c}
}

// Path returns the path of a single drink
func (d Drinks) Path(id int) string {
	return "/drinks/" + strconv.Itoa(id)
}

// List gets all drinks in the short representation into result, which
// is typically a *[]drink.ShortView.
func (d Drinks) List(result interface{}) (int, error) {
	return d.list("/drinks", result)
}

// ListDetailed gets all drinks in the long representation into result, which
// is typically a *[]drink.LongView. Needs a token with get:drinks-detail.
func (d Drinks) ListDetailed(result interface{}) (int, error) {
	return d.list("/drinks-detail", result)
}

// Create creates a drink and decodes the created drink into result
func (d Drinks) Create(body interface{}, result interface{}) (int, error) {
	var res DrinksResponse
	status, err := d.client.RawPost("/drinks", body, &res)
	if err != nil {
		return status, err
	}
	return status, first(res.Drinks, result)
}

// Update replaces title and recipe of a drink and decodes the updated drink into result
func (d Drinks) Update(id int, body interface{}, result interface{}) (int, error) {
	var res DrinksResponse
	status, err := d.client.RawPatch(d.Path(id), body, &res)
	if err != nil {
		return status, err
	}
	return status, first(res.Drinks, result)
}

// Delete deletes a drink and returns the id reported by the server
func (d Drinks) Delete(id int) (int, int, error) {
	var res DeleteResponse
	status, err := d.client.RawDelete(d.Path(id), &res)
	return status, res.Delete, err
}

func (d Drinks) list(path string, result interface{}) (int, error) {
	var res DrinksResponse
	status, err := d.client.RawGet(path, &res)
	if err != nil || result == nil {
		return status, err
	}
	raw, err := json.Marshal(res.Drinks)
	if err != nil {
		return status, err
	}
	return status, json.Unmarshal(raw, result)
}

func first(drinks []json.RawMessage, result interface{}) error {
	if result == nil || len(drinks) == 0 {
		return nil
	}
	return json.Unmarshal(drinks[0], result)
}
