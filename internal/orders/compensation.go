package orders

import (
	"context"
	"log"

	"github.com/ariefcatur/saga-fulfillment/internal/redisx"
	"github.com/ariefcatur/saga-fulfillment/internal/saga"
)

type expirer interface {
	Expire(ctx context.Context, orderID string) error
}

// Compensator set order EXPIRED untuk tiap entry batch cancel. Handler
// kompensasi catalog/billing/order jalan independen tanpa urutan.
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
		if err := c.Store.Expire(ctx, e.OrderID); err != nil {
			log.Printf("expire order=%s: %v", e.OrderID, err)
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
