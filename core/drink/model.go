// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*
Package drink holds the drink model, its two public views and its storage.

A drink has an id, a title and a recipe. The recipe is an ordered list of
ingredients and is stored as JSON text in a single column.

The short view omits ingredient names and is public. The long view shows
everything and is only served to callers holding the matching permission.
*/
package drink

import (
	"bytes"
	"database/sql/driver"
	"fmt"

	"github.com/goccy/go-json"
)

// Ingredient is one part of a recipe
type Ingredient struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Parts int    `json:"parts"`
}

// Recipe is an ordered list of ingredients.
//
// A recipe decodes from either a JSON array or a single JSON object, the
// latter becoming a recipe with one ingredient.
type Recipe []Ingredient

// UnmarshalJSON is a custom JSON unmarshaller
func (r *Recipe) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var single Ingredient
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*r = Recipe{single}
		return nil
	}
	var list []Ingredient
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*r = Recipe(list)
	return nil
}

// MarshalJSON never returns null, an empty recipe is an empty array
func (r Recipe) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Ingredient(r))
}

// Value implements driver.Valuer, the recipe is stored as JSON text
func (r Recipe) Value() (driver.Value, error) {
	j, err := r.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(j), nil
}

// Scan implements sql.Scanner
func (r *Recipe) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalJSON([]byte(v))
	case []byte:
		return r.UnmarshalJSON(v)
	case nil:
		*r = Recipe{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into recipe", src)
}

// Drink is the persisted drink
type Drink struct {
	ID     int
	Title  string
	Recipe Recipe
}

// ShortIngredient is an ingredient without its name
type ShortIngredient struct {
	Color string `json:"color"`
	Parts int    `json:"parts"`
}

// ShortView is the public representation of a drink
type ShortView struct {
	ID     int               `json:"id"`
	Title  string            `json:"title"`
	Recipe []ShortIngredient `json:"recipe"`
}

// LongView is the full representation of a drink
type LongView struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Recipe Recipe `json:"recipe"`
}

// Short returns the short view, ingredient names are omitted
func (d *Drink) Short() ShortView {
	recipe := make([]ShortIngredient, len(d.Recipe))
	for i, ingredient := range d.Recipe {
		recipe[i] = ShortIngredient{Color: ingredient.Color, Parts: ingredient.Parts}
	}
	return ShortView{ID: d.ID, Title: d.Title, Recipe: recipe}
}

// Long returns the long view
func (d *Drink) Long() LongView {
	recipe := make(Recipe, len(d.Recipe))
	copy(recipe, d.Recipe)
	return LongView{ID: d.ID, Title: d.Title, Recipe: recipe}
}
