package payment

import (
	"context"

	"github.com/ariefcatur/saga-fulfillment/internal/saga"
	"github.com/google/uuid"
)

type ledgerWriterStore interface {
	Create(ctx context.Context, t TemporaryTransaction) error
}

// LedgerWriter: subscriber ORDER_SUCCESS_EXCHANGE (queue logis
// ORDER_CREATE_TEMPORARY_TRANSACTION). Catat reservasi supaya bisa
// dikompensasi kalau pembayaran tidak pernah datang.
type LedgerWriter struct {
	Store ledgerWriterStore
}

func (w *LedgerWriter) HandleLedgerEntry(ctx context.Context, payload []byte) error {
	env, err := saga.Decode(payload, saga.EventLedgerEntryCreated)
	if err != nil {
		return err
	}
	p, err := saga.Payload[saga.LedgerEntryPayload](env)
	if err != nil {
		return err
	}

	return w.Store.Create(ctx, TemporaryTransaction{
		ID:            uuid.NewString(),
		OrderID:       p.OrderID,
		ProductID:     p.ProductID,
		BillingID:     p.BillingID,
		ProductStock:  p.ProductStock,
		OrderQuantity: p.OrderQuantity,
		ExpiresAt:     p.ExpiresAt,
	})
}
