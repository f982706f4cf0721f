package orders

import (
	"context"
	"testing"

	"github.com/ariefcatur/saga-fulfillment/internal/saga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatusStore struct{ orders map[string]Order }

func (f *fakeStatusStore) UpdateStatusByBillingID(_ context.Context, billingID, status string) (Order, error) {
	for id, o := range f.orders {
		if o.BillingID == billingID {
			if !saga.CanTransition(saga.Status(o.Status), saga.Status(status)) {
				return Order{}, ErrStatusFinal
			}
			o.Status = status
			f.orders[id] = o
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

func TestOrderAckTaggedOrder(t *testing.T) {
	store := &fakeStatusStore{orders: map[string]Order{
		"o1": {ID: "o1", BillingID: "b1", Status: string(saga.StatusUnpaid), Quantity: 3},
	}}
	bus := &fakeBroadcaster{}
	u := &StatusUpdater{Store: store, Bus: bus, ServiceName: "order-api"}

	env := saga.NewEnvelope(saga.EventPaymentStatusUpdate, "payment-api", "confirm-1", saga.PaymentStatusUpdatePayload{
		BillingID:     "b1",
		PaymentStatus: string(saga.StatusPaid),
		ReplyChannel:  saga.ReplyChannel("confirm-1"),
	})
	require.NoError(t, u.HandlePaymentUpdate(context.Background(), saga.MustMarshal(env)))

	require.Len(t, bus.channels, 1)
	assert.Equal(t, saga.ReplyChannel("confirm-1"), bus.channels[0])

	out := bus.values[0].(saga.Envelope)
	ack, err := saga.Payload[saga.PaymentAckPayload](out)
	require.NoError(t, err)
	assert.Equal(t, saga.AckSourceOrder, ack.Source)
	assert.True(t, ack.OK)
	require.NotNil(t, ack.Order)
	assert.Equal(t, string(saga.StatusPaid), ack.Order.Status)
	assert.Equal(t, "b1", ack.Order.BillingID)
}

// Order EXPIRED tidak boleh ditimpa jadi PAID oleh konfirmasi yang telat.
func TestOrderExpiredStaysExpired(t *testing.T) {
	store := &fakeStatusStore{orders: map[string]Order{
		"o1": {ID: "o1", BillingID: "b1", Status: string(saga.StatusExpired)},
	}}
	bus := &fakeBroadcaster{}
	u := &StatusUpdater{Store: store, Bus: bus, ServiceName: "order-api"}

	env := saga.NewEnvelope(saga.EventPaymentStatusUpdate, "payment-api", "confirm-3", saga.PaymentStatusUpdatePayload{
		BillingID:     "b1",
		PaymentStatus: string(saga.StatusPaid),
		ReplyChannel:  saga.ReplyChannel("confirm-3"),
	})
	require.NoError(t, u.HandlePaymentUpdate(context.Background(), saga.MustMarshal(env)))

	out := bus.values[0].(saga.Envelope)
	ack, err := saga.Payload[saga.PaymentAckPayload](out)
	require.NoError(t, err)
	assert.False(t, ack.OK)
	assert.Equal(t, string(saga.StatusExpired), store.orders["o1"].Status)
}

func TestOrderAckUnknownBilling(t *testing.T) {
	store := &fakeStatusStore{orders: map[string]Order{}}
	bus := &fakeBroadcaster{}
	u := &StatusUpdater{Store: store, Bus: bus, ServiceName: "order-api"}

	env := saga.NewEnvelope(saga.EventPaymentStatusUpdate, "payment-api", "confirm-2", saga.PaymentStatusUpdatePayload{
		BillingID:     "ghost",
		PaymentStatus: string(saga.StatusPaid),
		ReplyChannel:  saga.ReplyChannel("confirm-2"),
	})
	require.NoError(t, u.HandlePaymentUpdate(context.Background(), saga.MustMarshal(env)))

	out := bus.values[0].(saga.Envelope)
	ack, err := saga.Payload[saga.PaymentAckPayload](out)
	require.NoError(t, err)
	assert.False(t, ack.OK)
	assert.Nil(t, ack.Order)
}
