package saga

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderRequested      = "OrderRequested"
	EventStockReserved       = "StockReserved"
	EventUserValidated       = "UserValidated"
	EventOrderInvalid        = "OrderInvalid"
	EventOrderCompleted      = "OrderCompleted"
	EventLedgerEntryCreated  = "LedgerEntryCreated"
	EventPaymentStatusUpdate = "PaymentStatusUpdate"
	EventPaymentAck          = "PaymentAck"
	EventShippingRequested   = "ShippingRequested"
	EventShippingCreated     = "ShippingCreated"
	EventCancelBatch         = "CancelBatch"
	EventCancelAck           = "CancelAck"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "order-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // intake id / confirm id
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope bungkus payload jadi envelope v1 siap publish.
func NewEnvelope(eventType, producer, correlationID string, payload any) Envelope {
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       MustMarshal(payload),
	}
}

func MustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// Decode envelope dari wire; event type yang tidak dikenal ditolak di boundary.
func Decode(b []byte, wantType string) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return env, fmt.Errorf("decode envelope: %w", err)
	}
	if env.EventType != wantType {
		return env, fmt.Errorf("unexpected event type %q (want %q)", env.EventType, wantType)
	}
	return env, nil
}

// Payload memudahkan decode payload spesifik.
func Payload[T any](env Envelope) (T, error) {
	var t T
	if err := json.Unmarshal(env.Payload, &t); err != nil {
		return t, fmt.Errorf("decode %s payload: %w", env.EventType, err)
	}
	return t, nil
}
