package orders

import (
	"context"

	"github.com/ariefcatur/saga-fulfillment/internal/pending"
	"github.com/ariefcatur/saga-fulfillment/internal/redisx"
	"github.com/ariefcatur/saga-fulfillment/internal/saga"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Outcome: hasil akhir satu intake request. Persis satu dari
// {finalized, invalidated} yang nge-resolve tiap intake.
type Outcome struct {
	OK      bool
	Message string
	Order   Order
}

type orderStore interface {
	Create(ctx context.Context, o Order) (Order, error)
}

// Finalizer konsumsi ORDER_FINISH: simpan order UNPAID, broadcast entry ledger
// reservasi (log kompensasi), lalu resolve intake request yang menunggu.
// Consumer kedua di ORDER_INVALID resolve request yang sama dengan kegagalan.
type Finalizer struct {
	Store       orderStore
	Bus         redisx.Broadcaster // ORDER_SUCCESS_EXCHANGE
	Waiters     *pending.Registry[Outcome]
	ServiceName string
}

func (f *Finalizer) HandleOrderCompleted(ctx context.Context, m kafkago.Message) error {
	env, err := saga.Decode(m.Value, saga.EventOrderCompleted)
	if err != nil {
		return err
	}
	p, err := saga.Payload[saga.OrderCompletedPayload](env)
	if err != nil {
		return err
	}

	o, err := f.Store.Create(ctx, Order{
		ID:              uuid.NewString(),
		Status:          string(saga.StatusUnpaid),
		Quantity:        p.Quantity,
		Price:           p.Price,
		Amount:          p.Billing.Amount,
		ShippingAddress: p.User.ShippingAddress,
		Note:            p.Note,
		ProductID:       p.ProductID,
		BillingID:       p.Billing.ID,
		UserID:          p.User.ID,
	})
	if err != nil {
		return err // redeliver
	}

	entry := saga.NewEnvelope(saga.EventLedgerEntryCreated, f.ServiceName, env.CorrelationID, saga.LedgerEntryPayload{
		OrderID:       o.ID,
		ProductID:     o.ProductID,
		BillingID:     o.BillingID,
		ProductStock:  p.Stock,
		OrderQuantity: p.Quantity,
		ExpiresAt:     p.Billing.ExpiresAt,
	})
	if err := f.Bus.Broadcast(ctx, saga.ExchangeOrderSuccess, entry); err != nil {
		return err
	}

	f.Waiters.Resolve(env.CorrelationID, Outcome{OK: true, Message: "Order berhasil.", Order: o})
	return nil
}

// HandleOrderInvalid: resolver sisi gagal. Pesan invalid tanpa waiter (instance
// lain yang pegang request, atau caller sudah timeout) cuma di-drop.
func (f *Finalizer) HandleOrderInvalid(ctx context.Context, m kafkago.Message) error {
	env, err := saga.Decode(m.Value, saga.EventOrderInvalid)
	if err != nil {
		return err
	}
	p, err := saga.Payload[saga.OrderInvalidPayload](env)
	if err != nil {
		return err
	}

	f.Waiters.Resolve(env.CorrelationID, Outcome{OK: false, Message: p.Message})
	return nil
}
