package payment

import (
	"context"
	"time"

	"github.com/ariefcatur/saga-fulfillment/internal/saga"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TemporaryTransaction: satu baris ledger reservasi — cukup untuk membalikkan
// reservasi setelah lewat jatuh tempo.
type TemporaryTransaction struct {
	ID            string    `json:"id"`
	OrderID       string    `json:"order_id"`
	ProductID     string    `json:"product_id"`
	BillingID     string    `json:"billing_id"`
	ProductStock  int       `json:"product_stock"`
	OrderQuantity int       `json:"order_quantity"`
	ExpiresAt     time.Time `json:"expires_at"`
	CreatedAt     time.Time `json:"created_at"`
}

func (t TemporaryTransaction) Entry() saga.LedgerEntryPayload {
	return saga.LedgerEntryPayload{
		OrderID:       t.OrderID,
		ProductID:     t.ProductID,
		BillingID:     t.BillingID,
		ProductStock:  t.ProductStock,
		OrderQuantity: t.OrderQuantity,
		ExpiresAt:     t.ExpiresAt,
	}
}

type LedgerRepo struct{ DB *pgxpool.Pool }

func (r *LedgerRepo) Create(ctx context.Context, t TemporaryTransaction) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO temporary_transactions (id, order_id, product_id, billing_id, product_stock, order_quantity, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (order_id) DO NOTHING`,
		t.ID, t.OrderID, t.ProductID, t.BillingID, t.ProductStock, t.OrderQuantity, t.ExpiresAt)
	return err
}

func (r *LedgerRepo) FindExpired(ctx context.Context, cutoff time.Time) ([]TemporaryTransaction, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, product_id, billing_id, product_stock, order_quantity, expires_at, created_at
		FROM temporary_transactions WHERE expires_at < $1`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TemporaryTransaction
	for rows.Next() {
		var t TemporaryTransaction
		if err := rows.Scan(&t.ID, &t.OrderID, &t.ProductID, &t.BillingID, &t.ProductStock, &t.OrderQuantity, &t.ExpiresAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteExpired pakai predicate cutoff yang sama dengan scan, bukan id per
// record: baris yang baru kedaluwarsa di antara scan dan delete dibiarkan
// untuk sweep berikutnya.
func (r *LedgerRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	ct, err := r.DB.Exec(ctx, `DELETE FROM temporary_transactions WHERE expires_at < $1`, cutoff)
	return ct.RowsAffected(), err
}
