package shipping

import (
	"context"
	"regexp"
	"testing"

	"github.com/ariefcatur/saga-fulfillment/internal/saga"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeShipmentStore struct {
	created []Shipment
	err     error
}

func (f *fakeShipmentStore) Create(_ context.Context, s Shipment) (Shipment, error) {
	if f.err != nil {
		return Shipment{}, f.err
	}
	f.created = append(f.created, s)
	return s, nil
}

type fakeDedup struct{ marked map[string]bool }

func newFakeDedup() *fakeDedup { return &fakeDedup{marked: map[string]bool{}} }

func (f *fakeDedup) Seen(_ context.Context, id string) (bool, error) { return f.marked[id], nil }
func (f *fakeDedup) Mark(_ context.Context, id string) error {
	f.marked[id] = true
	return nil
}

type fakePublisher struct{ published [][]byte }

func (f *fakePublisher) Publish(_, value []byte, _ ...kafkago.Header) {
	f.published = append(f.published, value)
}

func shippingRequest(confirmID, orderID string) kafkago.Message {
	env := saga.NewEnvelope(saga.EventShippingRequested, "payment-api", confirmID, saga.ShippingRequestedPayload{
		ConfirmID: confirmID,
		Order: saga.OrderData{
			ID:              orderID,
			Status:          string(saga.StatusPaid),
			Quantity:        3,
			ShippingAddress: "Jl. Sudirman 1",
			ShippingCarrier: "JNE",
			UserID:          "u1",
		},
	})
	return kafkago.Message{Value: saga.MustMarshal(env)}
}

var trackingRe = regexp.MustCompile(`^[A-Z0-9]{16}$`)

func TestCreateShipmentAndReply(t *testing.T) {
	store := &fakeShipmentStore{}
	pub := &fakePublisher{}
	c := &Creator{Store: store, Dedup: newFakeDedup(), Producer: pub, ServiceName: "shipping-worker"}

	require.NoError(t, c.HandleShippingRequested(context.Background(), shippingRequest("confirm-1", "o1")))

	require.Len(t, store.created, 1)
	s := store.created[0]
	assert.Equal(t, "Dikemas", s.Status)
	assert.Equal(t, "JNE", s.Carrier)
	assert.Equal(t, "Jl. Sudirman 1", s.ShippingAddress)
	assert.Regexp(t, trackingRe, s.TrackingNumber)

	require.Len(t, pub.published, 1)
	env, err := saga.Decode(pub.published[0], saga.EventShippingCreated)
	require.NoError(t, err)
	assert.Equal(t, "confirm-1", env.CorrelationID)
	reply, err := saga.Payload[saga.ShippingCreatedPayload](env)
	require.NoError(t, err)
	assert.True(t, reply.OK)
	assert.Equal(t, "confirm-1", reply.ConfirmID)
	assert.Equal(t, s.ID, reply.Shipment.ID)
}

// Redelivery atau konfirmasi dobel untuk order yang sama: shipment kedua
// tidak boleh dibuat.
func TestCreateShipmentDedupByOrder(t *testing.T) {
	store := &fakeShipmentStore{}
	pub := &fakePublisher{}
	c := &Creator{Store: store, Dedup: newFakeDedup(), Producer: pub, ServiceName: "shipping-worker"}

	require.NoError(t, c.HandleShippingRequested(context.Background(), shippingRequest("confirm-1", "o1")))
	require.NoError(t, c.HandleShippingRequested(context.Background(), shippingRequest("confirm-2", "o1")))

	assert.Len(t, store.created, 1)
	assert.Len(t, pub.published, 1)
}

func TestCreateShipmentStoreError(t *testing.T) {
	store := &fakeShipmentStore{err: assert.AnError}
	pub := &fakePublisher{}
	dedup := newFakeDedup()
	c := &Creator{Store: store, Dedup: dedup, Producer: pub, ServiceName: "shipping-worker"}

	err := c.HandleShippingRequested(context.Background(), shippingRequest("confirm-3", "o3"))
	require.Error(t, err)

	// balasan gagal tetap terbit supaya request konfirmasi tidak menggantung,
	// tapi dedup belum ditandai: redelivery masih boleh dicoba
	require.Len(t, pub.published, 1)
	env, _ := saga.Decode(pub.published[0], saga.EventShippingCreated)
	reply, _ := saga.Payload[saga.ShippingCreatedPayload](env)
	assert.False(t, reply.OK)
	assert.False(t, dedup.marked["o3"])
}

func TestTrackingNumberFormat(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		n := newTrackingNumber()
		assert.Regexp(t, trackingRe, n)
		assert.False(t, seen[n])
		seen[n] = true
	}
}
