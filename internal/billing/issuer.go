package billing

import (
	"context"
	"time"

	kafkax "github.com/ariefcatur/saga-fulfillment/internal/kafka"
	"github.com/ariefcatur/saga-fulfillment/internal/saga"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

type BillingStore interface {
	Create(ctx context.Context, b Billing) (Billing, error)
}

// Issuer konsumsi ORDER_USER_VALID dan menerbitkan tagihan: reservasi berubah
// jadi invoice yang bisa dibayar. Emit ORDER_FINISH dengan ref billing.
type Issuer struct {
	Store       BillingStore
	Producer    kafkax.Publisher // ORDER_FINISH
	DueIn       time.Duration    // default 24 jam
	ServiceName string
	now         func() time.Time // untuk test; nil = time.Now
}

func (s *Issuer) HandleUserValidated(ctx context.Context, m kafkago.Message) error {
	env, err := saga.Decode(m.Value, saga.EventUserValidated)
	if err != nil {
		return err
	}
	p, err := saga.Payload[saga.UserValidatedPayload](env)
	if err != nil {
		return err
	}

	nowFn := s.now
	if nowFn == nil {
		nowFn = time.Now
	}
	dueIn := s.DueIn
	if dueIn <= 0 {
		dueIn = 24 * time.Hour
	}

	b, err := s.Store.Create(ctx, Billing{
		ID:            uuid.NewString(),
		Amount:        p.Quantity * p.Price,
		PaymentMethod: p.PaymentMethod,
		DueDate:       nowFn().UTC().Add(dueIn),
		PaymentStatus: string(saga.StatusUnpaid),
		PaymentCode:   NewPaymentCode(),
		UserID:        p.User.ID,
	})
	if err != nil {
		return err // redeliver
	}

	next := saga.NewEnvelope(saga.EventOrderCompleted, s.ServiceName, env.CorrelationID, saga.OrderCompletedPayload{
		UserValidatedPayload: p,
		Billing: saga.BillingRef{
			ID:        b.ID,
			Amount:    b.Amount,
			ExpiresAt: b.DueDate,
		},
	})
	s.Producer.Publish(saga.PartitionKey(env.CorrelationID), saga.MustMarshal(next))
	return nil
}
