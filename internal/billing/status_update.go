package billing

import (
	"context"
	"errors"

	"github.com/ariefcatur/saga-fulfillment/internal/redisx"
	"github.com/ariefcatur/saga-fulfillment/internal/saga"
)

type statusStore interface {
	UpdateStatus(ctx context.Context, billingID, status string) (Billing, error)
}

// StatusUpdater: subscriber sisi billing untuk PAYMENT_EXCHANGE. Update status
// by billing id lalu ack ke reply channel eksklusif milik request, tag "billing".
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

	ack := saga.PaymentAckPayload{Source: saga.AckSourceBilling, OK: true}
	b, err := s.Store.UpdateStatus(ctx, p.BillingID, p.PaymentStatus)
	switch {
	case errors.Is(err, ErrNotFound):
		ack.OK = false
		ack.Error = "billing tidak ditemukan"
	case err != nil:
		ack.OK = false
		ack.Error = err.Error()
	default:
		data := b.Data()
		ack.Billing = &data
	}

	out := saga.NewEnvelope(saga.EventPaymentAck, s.ServiceName, env.CorrelationID, ack)
	return s.Bus.Broadcast(ctx, p.ReplyChannel, out)
}
