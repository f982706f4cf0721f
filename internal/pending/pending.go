// Package pending menyimpan request synchronous yang lagi menunggu balasan
// asynchronous dari broker (pola publish-then-await-reply).
package pending

import "sync"

// Registry memetakan correlation id -> waiter. Tiap id di-resolve maksimal
// sekali; resolve kedua (mis. ORDER_FINISH dan ORDER_INVALID dua-duanya datang)
// jadi no-op.
type Registry[T any] struct {
	mu      sync.Mutex
	waiters map[string]chan T
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{waiters: make(map[string]chan T)}
}

// Register daftar waiter baru. Cancel func wajib dipanggil (defer) supaya
// entry tidak bocor saat caller timeout duluan.
func (r *Registry[T]) Register(id string) (<-chan T, func()) {
	ch := make(chan T, 1)
	r.mu.Lock()
	r.waiters[id] = ch
	r.mu.Unlock()
	return ch, func() {
		r.mu.Lock()
		delete(r.waiters, id)
		r.mu.Unlock()
	}
}

// Resolve kirim hasil ke waiter; false kalau tidak ada yang menunggu id ini
// (sudah resolved, sudah timeout, atau milik instance lain).
func (r *Registry[T]) Resolve(id string, v T) bool {
	r.mu.Lock()
	ch, ok := r.waiters[id]
	if ok {
		delete(r.waiters, id)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}
	ch <- v // buffered, tidak blocking
	return true
}

func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.waiters)
}
