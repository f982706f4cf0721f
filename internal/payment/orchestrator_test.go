package payment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ariefcatur/saga-fulfillment/internal/pending"
	"github.com/ariefcatur/saga-fulfillment/internal/saga"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedBus memainkan peran billing + order worker: begitu update status
// di-broadcast, dia kirim ack ke reply channel milik request.
type scriptedBus struct {
	mu       sync.Mutex
	subs     map[string]chan []byte
	onUpdate func(p saga.PaymentStatusUpdatePayload, reply chan<- []byte)

	broadcasts []string
}

func newScriptedBus(onUpdate func(p saga.PaymentStatusUpdatePayload, reply chan<- []byte)) *scriptedBus {
	return &scriptedBus{subs: make(map[string]chan []byte), onUpdate: onUpdate}
}

func (b *scriptedBus) Broadcast(_ context.Context, channel string, v any) error {
	b.mu.Lock()
	b.broadcasts = append(b.broadcasts, channel)
	b.mu.Unlock()
	if channel != saga.ExchangePayment {
		return nil
	}
	env := v.(saga.Envelope)
	p, err := saga.Payload[saga.PaymentStatusUpdatePayload](env)
	if err != nil {
		return err
	}
	b.mu.Lock()
	reply := b.subs[p.ReplyChannel]
	b.mu.Unlock()
	if b.onUpdate != nil && reply != nil {
		b.onUpdate(p, reply)
	}
	return nil
}

func (b *scriptedBus) Subscribe(_ context.Context, channel string) (<-chan []byte, func()) {
	ch := make(chan []byte, 8)
	b.mu.Lock()
	b.subs[channel] = ch
	b.mu.Unlock()
	return ch, func() {
		b.mu.Lock()
		delete(b.subs, channel)
		b.mu.Unlock()
	}
}

type capturePublisher struct {
	mu        sync.Mutex
	published [][]byte
	onPublish func(value []byte)
}

func (c *capturePublisher) Publish(_, value []byte, _ ...kafkago.Header) {
	c.mu.Lock()
	c.published = append(c.published, value)
	c.mu.Unlock()
	if c.onPublish != nil {
		c.onPublish(value)
	}
}

func ack(source, correlationID string, billing *saga.BillingData, order *saga.OrderData) []byte {
	env := saga.NewEnvelope(saga.EventPaymentAck, source+"-api", correlationID, saga.PaymentAckPayload{
		Source:  source,
		OK:      true,
		Billing: billing,
		Order:   order,
	})
	return saga.MustMarshal(env)
}

func TestConfirmAggregatesBothAcks(t *testing.T) {
	billing := saga.BillingData{ID: "b1", Amount: 3000, PaymentStatus: string(saga.StatusPaid)}
	order := saga.OrderData{ID: "o1", Status: string(saga.StatusPaid), BillingID: "b1", ShippingAddress: "Jl. Sudirman 1", UserID: "u1"}
	shipment := saga.ShipmentData{ID: "s1", Status: "Dikemas", OrderID: "o1", TrackingNumber: "ABCDEF1234567890"}

	replies := pending.NewRegistry[saga.ShippingCreatedPayload]()
	// ack order duluan, baru billing: urutan bebas
	bus := newScriptedBus(func(p saga.PaymentStatusUpdatePayload, reply chan<- []byte) {
		reply <- ack(saga.AckSourceOrder, "x", nil, &order)
		reply <- ack(saga.AckSourceBilling, "x", &billing, nil)
	})
	pub := &capturePublisher{onPublish: func(value []byte) {
		env, err := saga.Decode(value, saga.EventShippingRequested)
		require.NoError(t, err)
		req, err := saga.Payload[saga.ShippingRequestedPayload](env)
		require.NoError(t, err)
		assert.Equal(t, "o1", req.Order.ID)
		replies.Resolve(req.ConfirmID, saga.ShippingCreatedPayload{ConfirmID: req.ConfirmID, OK: true, Shipment: shipment})
	}}

	o := &Orchestrator{Bus: bus, ShippingProducer: pub, ShippingReplies: replies, Timeout: 2 * time.Second, ServiceName: "payment-api"}

	res, err := o.Confirm(context.Background(), "b1", string(saga.StatusPaid))
	require.NoError(t, err)
	assert.Equal(t, billing, res.Billing)
	assert.Equal(t, order, res.Order)
	assert.Equal(t, shipment, res.Shipment)
	assert.Equal(t, 0, replies.Len())
}

func TestConfirmFailedAckFailsRequest(t *testing.T) {
	bus := newScriptedBus(func(p saga.PaymentStatusUpdatePayload, reply chan<- []byte) {
		env := saga.NewEnvelope(saga.EventPaymentAck, "billing-api", "x", saga.PaymentAckPayload{
			Source: saga.AckSourceBilling,
			OK:     false,
			Error:  "billing tidak ditemukan",
		})
		reply <- saga.MustMarshal(env)
	})
	pub := &capturePublisher{}
	o := &Orchestrator{Bus: bus, ShippingProducer: pub, ShippingReplies: pending.NewRegistry[saga.ShippingCreatedPayload](), Timeout: 2 * time.Second, ServiceName: "payment-api"}

	_, err := o.Confirm(context.Background(), "ghost", string(saga.StatusPaid))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "billing tidak ditemukan")
	assert.Empty(t, pub.published, "shipping tidak boleh terbit kalau update gagal")
}

func TestConfirmRejectsBadInput(t *testing.T) {
	bus := newScriptedBus(nil)
	o := &Orchestrator{Bus: bus, ShippingProducer: &capturePublisher{}, ShippingReplies: pending.NewRegistry[saga.ShippingCreatedPayload](), Timeout: time.Second}

	_, err := o.Confirm(context.Background(), "", string(saga.StatusPaid))
	require.Error(t, err)
	_, err = o.Confirm(context.Background(), "b1", "SUDAH_BAYAR")
	require.Error(t, err)
	assert.Empty(t, bus.broadcasts, "input invalid tidak boleh sampai ke broker")
}

func TestConfirmShippingFailureFailsWhole(t *testing.T) {
	billing := saga.BillingData{ID: "b1", PaymentStatus: string(saga.StatusPaid)}
	order := saga.OrderData{ID: "o1", Status: string(saga.StatusPaid)}
	replies := pending.NewRegistry[saga.ShippingCreatedPayload]()
	bus := newScriptedBus(func(p saga.PaymentStatusUpdatePayload, reply chan<- []byte) {
		reply <- ack(saga.AckSourceBilling, "x", &billing, nil)
		reply <- ack(saga.AckSourceOrder, "x", nil, &order)
	})
	pub := &capturePublisher{onPublish: func(value []byte) {
		env, _ := saga.Decode(value, saga.EventShippingRequested)
		req, _ := saga.Payload[saga.ShippingRequestedPayload](env)
		replies.Resolve(req.ConfirmID, saga.ShippingCreatedPayload{ConfirmID: req.ConfirmID, OK: false, Error: "insert shipping gagal"})
	}}
	o := &Orchestrator{Bus: bus, ShippingProducer: pub, ShippingReplies: replies, Timeout: 2 * time.Second, ServiceName: "payment-api"}

	_, err := o.Confirm(context.Background(), "b1", string(saga.StatusPaid))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert shipping gagal")
}

func TestConfirmTimesOutWithoutAcks(t *testing.T) {
	bus := newScriptedBus(nil) // tidak ada worker yang jawab
	o := &Orchestrator{Bus: bus, ShippingProducer: &capturePublisher{}, ShippingReplies: pending.NewRegistry[saga.ShippingCreatedPayload](), Timeout: 50 * time.Millisecond}

	_, err := o.Confirm(context.Background(), "b1", string(saga.StatusPaid))
	assert.ErrorIs(t, err, ErrConfirmTimeout)
}

func TestConfirmIgnoresStrayMessages(t *testing.T) {
	billing := saga.BillingData{ID: "b1", PaymentStatus: string(saga.StatusPaid)}
	order := saga.OrderData{ID: "o1", Status: string(saga.StatusPaid)}
	shipment := saga.ShipmentData{ID: "s1", OrderID: "o1"}
	replies := pending.NewRegistry[saga.ShippingCreatedPayload]()
	bus := newScriptedBus(func(p saga.PaymentStatusUpdatePayload, reply chan<- []byte) {
		reply <- []byte("bukan json")
		// ack "sukses" tanpa data: siapa pun bisa publish ke reply channel,
		// jangan sampai panic atau dihitung
		reply <- ack(saga.AckSourceBilling, "x", nil, nil)
		reply <- ack(saga.AckSourceOrder, "x", nil, nil)
		reply <- ack(saga.AckSourceBilling, "x", &billing, nil)
		reply <- ack(saga.AckSourceOrder, "x", nil, &order)
	})
	pub := &capturePublisher{onPublish: func(value []byte) {
		env, _ := saga.Decode(value, saga.EventShippingRequested)
		req, _ := saga.Payload[saga.ShippingRequestedPayload](env)
		replies.Resolve(req.ConfirmID, saga.ShippingCreatedPayload{ConfirmID: req.ConfirmID, OK: true, Shipment: shipment})
	}}
	o := &Orchestrator{Bus: bus, ShippingProducer: pub, ShippingReplies: replies, Timeout: 2 * time.Second, ServiceName: "payment-api"}

	res, err := o.Confirm(context.Background(), "b1", string(saga.StatusPaid))
	require.NoError(t, err)
	assert.Equal(t, "s1", res.Shipment.ID)
}

func TestHandleShippingCreatedRoutesReply(t *testing.T) {
	replies := pending.NewRegistry[saga.ShippingCreatedPayload]()
	o := &Orchestrator{ShippingReplies: replies}

	ch, cancel := replies.Register("confirm-9")
	defer cancel()

	env := saga.NewEnvelope(saga.EventShippingCreated, "shipping-worker", "confirm-9", saga.ShippingCreatedPayload{
		ConfirmID: "confirm-9",
		OK:        true,
		Shipment:  saga.ShipmentData{ID: "s9", Status: "Dikemas"},
	})
	require.NoError(t, o.HandleShippingCreated(context.Background(), kafkago.Message{Value: saga.MustMarshal(env)}))

	select {
	case got := <-ch:
		assert.Equal(t, "s9", got.Shipment.ID)
	default:
		t.Fatal("balasan shipment tidak sampai ke waiter")
	}
}
