package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	kafkax "github.com/ariefcatur/saga-fulfillment/internal/kafka"
	"github.com/ariefcatur/saga-fulfillment/internal/pending"
	"github.com/ariefcatur/saga-fulfillment/internal/saga"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// bus: publish + subscribe fanout, dipuaskan redisx.Bus.
type bus interface {
	Broadcast(ctx context.Context, channel string, v any) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func())
}

var ErrConfirmTimeout = errors.New("payment confirmation timed out")

// ConfirmResult: agregat yang dikembalikan ke caller. Tidak ada partial
// success — kalau shipping gagal, seluruh request gagal walau mutasi
// billing/order sudah terlanjur (jendela inkonsistensi yang diterima desain).
type ConfirmResult struct {
	Billing  saga.BillingData  `json:"billingData"`
	Order    saga.OrderData    `json:"orderData"`
	Shipment saga.ShipmentData `json:"shippingData"`
}

// Orchestrator jalankan konfirmasi pembayaran: fanout update status, tunggu
// DUA ack independen (billing + order, urutan bebas), lalu minta pembuatan
// shipment dan tunggu balasannya.
type Orchestrator struct {
	Bus              bus
	ShippingProducer kafkax.Publisher // CREATE_SHIPPING_DATA
	ShippingReplies  *pending.Registry[saga.ShippingCreatedPayload]
	Timeout          time.Duration
	ServiceName      string
}

func (o *Orchestrator) Confirm(ctx context.Context, billingID, paymentStatus string) (ConfirmResult, error) {
	var res ConfirmResult
	if billingID == "" || !saga.ValidStatus(paymentStatus) {
		return res, fmt.Errorf("invalid confirmation: billing_id=%q status=%q", billingID, paymentStatus)
	}

	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	confirmID := uuid.NewString()
	reply := saga.ReplyChannel(confirmID)

	// subscribe dulu baru publish, jangan sampai ack keburu lewat
	acks, closeSub := o.Bus.Subscribe(ctx, reply)
	defer closeSub()

	update := saga.NewEnvelope(saga.EventPaymentStatusUpdate, o.ServiceName, confirmID, saga.PaymentStatusUpdatePayload{
		BillingID:     billingID,
		PaymentStatus: paymentStatus,
		ReplyChannel:  reply,
	})
	if err := o.Bus.Broadcast(ctx, saga.ExchangePayment, update); err != nil {
		return res, err
	}

	var haveBilling, haveOrder bool
	for !(haveBilling && haveOrder) {
		select {
		case <-ctx.Done():
			return res, ErrConfirmTimeout
		case raw, ok := <-acks:
			if !ok {
				return res, ErrConfirmTimeout
			}
			env, err := saga.Decode(raw, saga.EventPaymentAck)
			if err != nil {
				continue // pesan nyasar di reply channel, abaikan
			}
			ack, err := saga.Payload[saga.PaymentAckPayload](env)
			if err != nil {
				continue
			}
			if !ack.OK {
				return res, fmt.Errorf("%s update failed: %s", ack.Source, ack.Error)
			}
			switch ack.Source {
			case saga.AckSourceBilling:
				if ack.Billing == nil {
					continue // ack sukses tanpa data: sama dengan pesan nyasar
				}
				res.Billing = *ack.Billing
				haveBilling = true
			case saga.AckSourceOrder:
				if ack.Order == nil {
					continue
				}
				res.Order = *ack.Order
				haveOrder = true
			}
		}
	}

	// kedua sisi sudah ter-update; lanjut bikin shipment
	wait, cancelWait := o.ShippingReplies.Register(confirmID)
	defer cancelWait()

	shipReq := saga.NewEnvelope(saga.EventShippingRequested, o.ServiceName, confirmID, saga.ShippingRequestedPayload{
		ConfirmID: confirmID,
		Order:     res.Order,
	})
	o.ShippingProducer.Publish(saga.PartitionKey(confirmID), saga.MustMarshal(shipReq))

	select {
	case <-ctx.Done():
		return res, ErrConfirmTimeout
	case created := <-wait:
		if !created.OK {
			return res, fmt.Errorf("create shipping data: %s", created.Error)
		}
		res.Shipment = created.Shipment
	}
	return res, nil
}

// HandleShippingCreated: consumer CREATE_SHIPPING_DATA_SUCCESS, nge-route
// balasan shipment ke request konfirmasi yang menunggu.
func (o *Orchestrator) HandleShippingCreated(ctx context.Context, m kafkago.Message) error {
	env, err := saga.Decode(m.Value, saga.EventShippingCreated)
	if err != nil {
		return err
	}
	p, err := saga.Payload[saga.ShippingCreatedPayload](env)
	if err != nil {
		return err
	}
	o.ShippingReplies.Resolve(p.ConfirmID, p)
	return nil
}
