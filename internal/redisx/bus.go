package redisx

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// Broadcaster adalah sisi publish dari bus fanout; handler pegang interface ini
// supaya bisa ditest dengan fake.
type Broadcaster interface {
	Broadcast(ctx context.Context, channel string, v any) error
}

// Bus: fanout transient di atas Redis pub/sub. Tidak ada ack dan tidak durable —
// subscriber yang sedang down kehilangan pesan. Dipakai untuk exchange yang
// memang best-effort (ORDER_SUCCESS, PAYMENT, TRANSACTIONS_CANCEL, dst).
type Bus struct {
	R *redis.Client
}

func NewBus(r *redis.Client) *Bus { return &Bus{R: r} }

func (b *Bus) Broadcast(ctx context.Context, channel string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.R.Publish(ctx, channel, raw).Err()
}

// Subscribe buka channel balasan; cancel func wajib dipanggil untuk menutup
// subscription. Pesan diantar lewat channel Go ber-buffer.
func (b *Bus) Subscribe(ctx context.Context, channel string) (<-chan []byte, func()) {
	sub := b.R.Subscribe(ctx, channel)
	out := make(chan []byte, 16)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			out <- []byte(msg.Payload)
		}
	}()
	return out, func() { _ = sub.Close() }
}

// Consume jalanin handler untuk tiap pesan fanout sampai ctx selesai.
// Error handler cuma di-log: channel transient, tidak ada redelivery.
func (b *Bus) Consume(ctx context.Context, channel string, h func(ctx context.Context, payload []byte) error) {
	sub := b.R.Subscribe(ctx, channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := h(ctx, []byte(msg.Payload)); err != nil {
				log.Printf("fanout %s handler: %v", channel, err)
			}
		}
	}
}
