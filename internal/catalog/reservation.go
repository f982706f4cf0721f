package catalog

import (
	"context"
	"errors"
	"log"

	kafkax "github.com/ariefcatur/saga-fulfillment/internal/kafka"
	"github.com/ariefcatur/saga-fulfillment/internal/saga"
	kafkago "github.com/segmentio/kafka-go"
)

// ProductStore: subset repo yang dipakai handler reservasi.
type ProductStore interface {
	Reserve(ctx context.Context, productID string, qty int) (price, remaining int, err error)
}

type Deduper interface {
	Seen(ctx context.Context, id string) (bool, error)
	Mark(ctx context.Context, id string) error
}

// Service konsumsi ORDER_START: cek & potong stok, lalu terusin ke
// ORDER_PRODUCT_VALID atau tolak ke ORDER_INVALID. Decrement stok adalah
// langkah irreversible pertama saga; kompensasinya lewat ledger + expiry.
type Service struct {
	Store           ProductStore
	Dedup           Deduper
	ProducerValid   kafkax.Publisher // ORDER_PRODUCT_VALID
	ProducerInvalid kafkax.Publisher // ORDER_INVALID
	ServiceName     string
}

func (s *Service) HandleOrderRequested(ctx context.Context, m kafkago.Message) error {
	env, err := saga.Decode(m.Value, saga.EventOrderRequested)
	if err != nil {
		return err
	}

	// dedup via event_id: decrement tidak boleh kena redelivery dua kali
	if seen, err := s.Dedup.Seen(ctx, env.EventID); err == nil && seen {
		return nil
	}

	p, err := saga.Payload[saga.OrderRequestedPayload](env)
	if err != nil {
		return err
	}
	if p.Quantity <= 0 {
		return s.publishInvalid(env, saga.ReasonOutOfStock, "Jumlah pesanan tidak valid.")
	}

	price, remaining, err := s.Store.Reserve(ctx, p.ProductID, p.Quantity)
	switch {
	case errors.Is(err, ErrInsufficientStock):
		return s.publishInvalid(env, saga.ReasonOutOfStock, "Stok habis.")
	case errors.Is(err, ErrNotFound):
		return s.publishInvalid(env, saga.ReasonProductNotFound, "Produk tidak ditemukan.")
	case err != nil:
		return err // jangan commit offset, biar di-redeliver
	}

	// tandai sesudah decrement durable, sebelum forward
	if err := s.Dedup.Mark(ctx, env.EventID); err != nil {
		log.Printf("dedup mark %s: %v", env.EventID, err)
	}

	next := saga.NewEnvelope(saga.EventStockReserved, s.ServiceName, env.CorrelationID, saga.StockReservedPayload{
		ProductID:     p.ProductID,
		Quantity:      p.Quantity,
		Stock:         remaining,
		Price:         price,
		PaymentMethod: p.PaymentMethod,
		Note:          p.Note,
		UserID:        p.UserID,
	})
	s.ProducerValid.Publish(saga.PartitionKey(env.CorrelationID), saga.MustMarshal(next))
	return nil
}

func (s *Service) publishInvalid(env saga.Envelope, reason, message string) error {
	inv := saga.NewEnvelope(saga.EventOrderInvalid, s.ServiceName, env.CorrelationID, saga.OrderInvalidPayload{
		Reason:  reason,
		Message: message,
	})
	s.ProducerInvalid.Publish(saga.PartitionKey(env.CorrelationID), saga.MustMarshal(inv))
	return nil
}
