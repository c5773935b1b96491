// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package backend

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/relabs-tech/coffeeshop/core"
	"github.com/relabs-tech/coffeeshop/core/drink"
	"github.com/relabs-tech/coffeeshop/core/logger"
)

// notify sends a committed drink change to the notifier. Notifier failures
// never fail the request.
func (b *Backend) notify(ctx context.Context, operation core.Operation, d *drink.Drink) {
	if b.notifier == nil {
		return
	}
	rlog := logger.FromContext(ctx)
	payload, err := json.Marshal(d.Long())
	if err != nil {
		rlog.WithError(err).Errorln("cannot marshal notification for drink", d.ID)
		return
	}
	if err := callWithPanicEnvelope(func() { b.notifier.Notify(ctx, drink.TableName, operation, payload) }); err != nil {
		rlog.WithError(err).Errorln("notifier failed for drink", d.ID, operation)
	}
}

func callWithPanicEnvelope(callback func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered from panic: %s", r)
		}
	}()
	callback()
	return
}
