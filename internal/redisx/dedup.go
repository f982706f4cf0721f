package redisx

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Dedup menandai pesan yang sudah diproses per service. Broker at-least-once,
// jadi handler dengan side effect non-idempotent cek di awal dan tandai
// setelah mutasinya beres — bukan sebaliknya, supaya kegagalan di tengah
// masih bisa di-redeliver.
type Dedup struct {
	R       *redis.Client
	Service string
}

// Seen: true kalau id sudah pernah selesai diproses. Best-effort: kalau
// Redis down, anggap belum pernah (biar saga tetap jalan).
func (d Dedup) Seen(ctx context.Context, id string) (bool, error) {
	return Exists(ctx, d.R, fmt.Sprintf(KeyDedup, d.Service, id))
}

func (d Dedup) Mark(ctx context.Context, id string) error {
	return d.R.Set(ctx, fmt.Sprintf(KeyDedup, d.Service, id), "1", TTLDedup).Err()
}
