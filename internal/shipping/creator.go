package shipping

import (
	"context"
	"log"
	"strings"

	kafkax "github.com/ariefcatur/saga-fulfillment/internal/kafka"
	"github.com/ariefcatur/saga-fulfillment/internal/saga"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

type ShipmentStore interface {
	Create(ctx context.Context, s Shipment) (Shipment, error)
}

type Deduper interface {
	Seen(ctx context.Context, id string) (bool, error)
	Mark(ctx context.Context, id string) error
}

// Creator konsumsi CREATE_SHIPPING_DATA: satu shipment per order yang sudah
// dikonfirmasi (dedup by order id, bukan event id — redelivery maupun
// konfirmasi dobel sama-sama tidak boleh bikin shipment kedua).
type Creator struct {
	Store       ShipmentStore
	Dedup       Deduper
	Producer    kafkax.Publisher // CREATE_SHIPPING_DATA_SUCCESS
	ServiceName string
}

func (c *Creator) HandleShippingRequested(ctx context.Context, m kafkago.Message) error {
	env, err := saga.Decode(m.Value, saga.EventShippingRequested)
	if err != nil {
		return err
	}
	p, err := saga.Payload[saga.ShippingRequestedPayload](env)
	if err != nil {
		return err
	}

	if seen, err := c.Dedup.Seen(ctx, p.Order.ID); err == nil && seen {
		return nil
	}

	s, err := c.Store.Create(ctx, Shipment{
		ID:              uuid.NewString(),
		Carrier:         p.Order.ShippingCarrier,
		CurrentLocation: "",
		ShippingAddress: p.Order.ShippingAddress,
		Status:          "Dikemas",
		TrackingNumber:  newTrackingNumber(),
		UserID:          p.Order.UserID,
		OrderID:         p.Order.ID,
	})
	if err != nil {
		c.publishReply(env, saga.ShippingCreatedPayload{
			ConfirmID: p.ConfirmID,
			OK:        false,
			Error:     err.Error(),
		})
		return err // redeliver; dedup belum ditandai jadi masih bisa dicoba lagi
	}
	if err := c.Dedup.Mark(ctx, p.Order.ID); err != nil {
		log.Printf("dedup mark order=%s: %v", p.Order.ID, err)
	}

	c.publishReply(env, saga.ShippingCreatedPayload{
		ConfirmID: p.ConfirmID,
		OK:        true,
		Shipment:  s.Data(),
	})
	return nil
}

func (c *Creator) publishReply(env saga.Envelope, p saga.ShippingCreatedPayload) {
	out := saga.NewEnvelope(saga.EventShippingCreated, c.ServiceName, env.CorrelationID, p)
	c.Producer.Publish(saga.PartitionKey(env.CorrelationID), saga.MustMarshal(out))
}

func newTrackingNumber() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:16]
}
