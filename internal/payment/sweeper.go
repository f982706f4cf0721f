package payment

import (
	"context"
	"log"
	"time"

	"github.com/ariefcatur/saga-fulfillment/internal/saga"
	"github.com/google/uuid"
)

type ledgerStore interface {
	FindExpired(ctx context.Context, cutoff time.Time) ([]TemporaryTransaction, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper: kompensasi berbasis waktu. Tiap interval: scan ledger yang lewat
// jatuh tempo, broadcast batch cancel, tunggu SATU ack sukses (tiga handler
// kompensasi balapan ngirim — kelemahan koordinasi yang disengaja, mengikuti
// desain asli), lalu hapus baris yang di-sweep dengan predicate cutoff yang
// sama.
type Sweeper struct {
	Ledger      ledgerStore
	Bus         bus
	Interval    time.Duration
	AckTimeout  time.Duration
	ServiceName string
}

func (s *Sweeper) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.Sweep(ctx); err != nil {
				log.Printf("sweep: %v", err)
			}
		}
	}
}

// Sweep sekali putaran; dipisah dari Run supaya bisa ditest langsung.
func (s *Sweeper) Sweep(ctx context.Context) error {
	cutoff := time.Now().UTC()

	expired, err := s.Ledger.FindExpired(ctx, cutoff)
	if err != nil {
		return err
	}
	if len(expired) == 0 {
		return nil // no-op
	}

	ackTimeout := s.AckTimeout
	if ackTimeout <= 0 {
		ackTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, ackTimeout)
	defer cancel()

	acks, closeSub := s.Bus.Subscribe(ctx, saga.ExchangeCancelSuccess)
	defer closeSub()

	entries := make([]saga.LedgerEntryPayload, 0, len(expired))
	for _, t := range expired {
		entries = append(entries, t.Entry())
	}
	batch := saga.NewEnvelope(saga.EventCancelBatch, s.ServiceName, uuid.NewString(), saga.CancelBatchPayload{Entries: entries})
	if err := s.Bus.Broadcast(ctx, saga.ExchangeCancel, batch); err != nil {
		return err
	}

	// ack pertama cukup buat lanjut delete
	select {
	case <-ctx.Done():
		return ctx.Err()
	case raw, ok := <-acks:
		if !ok {
			return context.Canceled
		}
		if _, err := saga.Decode(raw, saga.EventCancelAck); err != nil {
			return err
		}
	}

	deleted, err := s.Ledger.DeleteExpired(ctx, cutoff)
	if err != nil {
		return err
	}
	log.Printf("sweep: %d ledger entries compensated and deleted", deleted)
	return nil
}
