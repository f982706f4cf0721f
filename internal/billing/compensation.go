package billing

import (
	"context"
	"log"

	"github.com/ariefcatur/saga-fulfillment/internal/redisx"
	"github.com/ariefcatur/saga-fulfillment/internal/saga"
)

type expirer interface {
	Expire(ctx context.Context, billingID string) error
}

// Compensator set tagihan EXPIRED untuk tiap entry batch cancel.
type Compensator struct {
	Store       expirer
	Bus         redisx.Broadcaster
	ServiceName string
}

func (c *Compensator) HandleCancelBatch(ctx context.Context, payload []byte) error {
	env, err := saga.Decode(payload, saga.EventCancelBatch)
	if err != nil {
		return err
	}
	batch, err := saga.Payload[saga.CancelBatchPayload](env)
	if err != nil {
		return err
	}

	expired := 0
	for _, e := range batch.Entries {
		if err := c.Store.Expire(ctx, e.BillingID); err != nil {
			log.Printf("expire billing=%s: %v", e.BillingID, err)
			continue
		}
		expired++
	}

	ack := saga.NewEnvelope(saga.EventCancelAck, c.ServiceName, env.CorrelationID, saga.CancelAckPayload{
		Service: c.ServiceName,
		Expired: expired,
	})
	return c.Bus.Broadcast(ctx, saga.ExchangeCancelSuccess, ack)
}
