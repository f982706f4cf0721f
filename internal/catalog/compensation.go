package catalog

import (
	"context"
	"log"

	"github.com/ariefcatur/saga-fulfillment/internal/redisx"
	"github.com/ariefcatur/saga-fulfillment/internal/saga"
)

type restorer interface {
	Restore(ctx context.Context, productID string, stockSnapshot, qty int) error
}

// Compensator balikin stok untuk batch transaksi kedaluwarsa dari
// TRANSACTIONS_CANCEL_EXCHANGE. Error per record di-log lalu di-skip; batch
// jalan terus dan tetap lapor sukses (perilaku kompensasi asli).
type Compensator struct {
	Store       restorer
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

	restored := 0
	for _, e := range batch.Entries {
		if err := c.Store.Restore(ctx, e.ProductID, e.ProductStock, e.OrderQuantity); err != nil {
			log.Printf("restore stock product=%s: %v", e.ProductID, err)
			continue
		}
		restored++
	}

	ack := saga.NewEnvelope(saga.EventCancelAck, c.ServiceName, env.CorrelationID, saga.CancelAckPayload{
		Service: c.ServiceName,
		Expired: restored,
	})
	return c.Bus.Broadcast(ctx, saga.ExchangeCancelSuccess, ack)
}
