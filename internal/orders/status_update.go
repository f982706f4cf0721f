package orders

import (
	"context"
	"errors"

	"github.com/ariefcatur/saga-fulfillment/internal/redisx"
	"github.com/ariefcatur/saga-fulfillment/internal/saga"
)

type statusStore interface {
	UpdateStatusByBillingID(ctx context.Context, billingID, status string) (Order, error)
}

// StatusUpdater: subscriber sisi order untuk PAYMENT_EXCHANGE, kembaran
// billing.StatusUpdater dengan tag "order". Orchestrator tidak mengandalkan
// urutan kedatangan dua ack ini.
type StatusUpdater struct {
	Store       statusStore
	Bus         redisx.Broadcaster
	ServiceName string
}

func (s *StatusUpdater) HandlePaymentUpdate(ctx context.Context, payload []byte) error {
	env, err := saga.Decode(payload, saga.EventPaymentStatusUpdate)
	if err != nil {
		return err
	}
	p, err := saga.Payload[saga.PaymentStatusUpdatePayload](env)
	if err != nil {
		return err
	}

	ack := saga.PaymentAckPayload{Source: saga.AckSourceOrder, OK: true}
	o, err := s.Store.UpdateStatusByBillingID(ctx, p.BillingID, p.PaymentStatus)
	switch {
	case errors.Is(err, ErrNotFound):
		ack.OK = false
		ack.Error = "order tidak ditemukan"
	case err != nil:
		ack.OK = false
		ack.Error = err.Error()
	default:
		data := o.Data()
		ack.Order = &data
	}

	out := saga.NewEnvelope(saga.EventPaymentAck, s.ServiceName, env.CorrelationID, ack)
	return s.Bus.Broadcast(ctx, p.ReplyChannel, out)
}
