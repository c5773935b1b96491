// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*
Package core holds the types shared by the coffee shop packages.
*/
package core

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

// Operation represents a modifying storage operation on a drink, one of Create, Update, Delete
type Operation string

// all operations that produce a notification
const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// UnmarshalJSON is a custom JSON unmarshaller
func (o *Operation) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*o = Operation(s)
	switch *o {
	case OperationCreate, OperationUpdate, OperationDelete:
		return nil
	default:
		return fmt.Errorf("%s is not valid Operation", s)
	}
}

// Notifier is an interface to receive database notifications. The context
// carries the request logger, it may be canceled once Notify returns.
type Notifier interface {
	Notify(ctx context.Context, resource string, operation Operation, payload []byte)
}
