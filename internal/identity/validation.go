package identity

import (
	"context"
	"errors"

	kafkax "github.com/ariefcatur/saga-fulfillment/internal/kafka"
	"github.com/ariefcatur/saga-fulfillment/internal/saga"
	kafkago "github.com/segmentio/kafka-go"
)

type UserStore interface {
	GetByID(ctx context.Context, id string) (User, error)
}

// Service konsumsi ORDER_PRODUCT_VALID: pastikan data user lengkap sebelum
// tagihan terbit. Jalur gagal di sini TIDAK membalikkan stok yang sudah
// dipotong upstream — pengembalian terjadi lewat expiry sweeper.
type Service struct {
	Store           UserStore
	ProducerValid   kafkax.Publisher // ORDER_USER_VALID
	ProducerInvalid kafkax.Publisher // ORDER_INVALID
	ServiceName     string
}

func (s *Service) HandleStockReserved(ctx context.Context, m kafkago.Message) error {
	env, err := saga.Decode(m.Value, saga.EventStockReserved)
	if err != nil {
		return err
	}
	p, err := saga.Payload[saga.StockReservedPayload](env)
	if err != nil {
		return err
	}

	u, err := s.Store.GetByID(ctx, p.UserID)
	if errors.Is(err, ErrNotFound) {
		return s.publishInvalid(env, "Data user belum lengkap.")
	}
	if err != nil {
		return err // redeliver
	}
	if !u.Complete() {
		return s.publishInvalid(env, "Data user belum lengkap.")
	}

	next := saga.NewEnvelope(saga.EventUserValidated, s.ServiceName, env.CorrelationID, saga.UserValidatedPayload{
		ProductID:     p.ProductID,
		Quantity:      p.Quantity,
		Stock:         p.Stock,
		Price:         p.Price,
		PaymentMethod: p.PaymentMethod,
		Note:          p.Note,
		User:          saga.UserRef{ID: u.ID, ShippingAddress: u.Address},
	})
	s.ProducerValid.Publish(saga.PartitionKey(env.CorrelationID), saga.MustMarshal(next))
	return nil
}

func (s *Service) publishInvalid(env saga.Envelope, message string) error {
	inv := saga.NewEnvelope(saga.EventOrderInvalid, s.ServiceName, env.CorrelationID, saga.OrderInvalidPayload{
		Reason:  saga.ReasonIncompleteUserData,
		Message: message,
	})
	s.ProducerInvalid.Publish(saga.PartitionKey(env.CorrelationID), saga.MustMarshal(inv))
	return nil
}
