package saga

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	env := NewEnvelope(EventOrderRequested, "order-api", "intake-1", OrderRequestedPayload{
		ProductID: "p1", Quantity: 3, PaymentMethod: "transfer", UserID: "u1",
	})

	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, EventOrderRequested, env.EventType)
	assert.Equal(t, 1, env.EventVersion)
	assert.Equal(t, "order-api", env.Producer)
	assert.Equal(t, "intake-1", env.CorrelationID)

	p, err := Payload[OrderRequestedPayload](env)
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ProductID)
	assert.Equal(t, 3, p.Quantity)
}

func TestDecodeRejectsWrongType(t *testing.T) {
	env := NewEnvelope(EventOrderInvalid, "svc", "x", OrderInvalidPayload{Reason: ReasonOutOfStock})
	raw, err := json.Marshal(env)
	require.NoError(t, err)

	_, err = Decode(raw, EventOrderCompleted)
	require.Error(t, err)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	_, err := Decode([]byte("not-json"), EventOrderRequested)
	require.Error(t, err)
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, CanTransition(StatusUnpaid, StatusPaid))
	assert.True(t, CanTransition(StatusUnpaid, StatusExpired))

	// PAID dan EXPIRED final
	assert.False(t, CanTransition(StatusPaid, StatusExpired))
	assert.False(t, CanTransition(StatusExpired, StatusUnpaid))
	assert.False(t, CanTransition(StatusExpired, StatusExpired))
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus("PAID"))
	assert.False(t, ValidStatus("Menunggu pembayaran."))
	assert.False(t, ValidStatus(""))
}
