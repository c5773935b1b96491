// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package drink

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/goccy/go-json"

	"github.com/relabs-tech/coffeeshop/core/schema"
)

// SchemaID is the $id of the JSON schema for create and update bodies
const SchemaID = "https://coffeeshop.relabs.tech/schemas/drink.json"

//go:embed schemas
var schemasFS embed.FS

// ErrInvalid is returned for request bodies that are not a valid drink
var ErrInvalid = errors.New("invalid drink")

// Payload is the request body for creating or updating a drink
type Payload struct {
	Title  string `json:"title"`
	Recipe Recipe `json:"recipe"`
}

// NewValidator returns a validator which knows the drink schema
func NewValidator() (*schema.Validator, error) {
	sub, err := fs.Sub(schemasFS, "schemas")
	if err != nil {
		return nil, err
	}
	return schema.NewValidatorFromFS(sub)
}

// ParsePayload validates body against the drink schema and decodes it.
// Every failure wraps ErrInvalid.
func ParsePayload(validator *schema.Validator, body []byte) (*Payload, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrInvalid)
	}
	if err := validator.ValidateBytes(body, SchemaID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	payload := &Payload{}
	if err := json.Unmarshal(body, payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return payload, nil
}

// Apply overwrites title and recipe of d with the payload
func (p *Payload) Apply(d *Drink) {
	d.Title = p.Title
	d.Recipe = p.Recipe
}
