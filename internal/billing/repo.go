package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/saga-fulfillment/internal/saga"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Billing struct {
	ID            string    `json:"id"`
	Amount        int       `json:"amount"`
	PaymentMethod string    `json:"payment_method"`
	DueDate       time.Time `json:"due_date"`
	PaymentStatus string    `json:"payment_status"`
	PaymentCode   string    `json:"payment_code"`
	UserID        string    `json:"user_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (b Billing) Data() saga.BillingData {
	return saga.BillingData{
		ID:            b.ID,
		Amount:        b.Amount,
		PaymentMethod: b.PaymentMethod,
		DueDate:       b.DueDate,
		PaymentStatus: b.PaymentStatus,
		PaymentCode:   b.PaymentCode,
		UserID:        b.UserID,
	}
}

var (
	ErrNotFound    = errors.New("billing not found")
	ErrStatusFinal = errors.New("billing status is final")
)

type Repo struct{ DB *pgxpool.Pool }

const uniqueViolation = "23505"

// Create simpan tagihan baru. payment_code punya unique constraint; kalau
// kebetulan tabrakan, generate ulang sekali lalu coba lagi.
func (r *Repo) Create(ctx context.Context, b Billing) (Billing, error) {
	for attempt := 0; ; attempt++ {
		err := r.DB.QueryRow(ctx, `
			INSERT INTO billings (id, amount, payment_method, due_date, payment_status, payment_code, user_id)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			RETURNING created_at, updated_at`,
			b.ID, b.Amount, b.PaymentMethod, b.DueDate, b.PaymentStatus, b.PaymentCode, b.UserID).
			Scan(&b.CreatedAt, &b.UpdatedAt)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && attempt == 0 {
			b.PaymentCode = NewPaymentCode()
			continue
		}
		return b, err
	}
}

// UpdateStatus set status pembayaran by id, return record terbaru. PAID dan
// EXPIRED final: konfirmasi yang datang setelah sweep tidak boleh menimpa
// tagihan yang sudah EXPIRED.
func (r *Repo) UpdateStatus(ctx context.Context, billingID, status string) (Billing, error) {
	var cur string
	err := r.DB.QueryRow(ctx, `SELECT payment_status FROM billings WHERE id=$1`, billingID).Scan(&cur)
	if errors.Is(err, pgx.ErrNoRows) {
		return Billing{}, ErrNotFound
	}
	if err != nil {
		return Billing{}, err
	}
	if !saga.CanTransition(saga.Status(cur), saga.Status(status)) {
		return Billing{}, fmt.Errorf("%w: %s -> %s", ErrStatusFinal, cur, status)
	}

	var b Billing
	err = r.DB.QueryRow(ctx, `
		UPDATE billings SET payment_status=$2, updated_at=now()
		WHERE id=$1 AND payment_status=$3
		RETURNING id, amount, payment_method, due_date, payment_status, payment_code, user_id, created_at, updated_at`,
		billingID, status, cur).
		Scan(&b.ID, &b.Amount, &b.PaymentMethod, &b.DueDate, &b.PaymentStatus, &b.PaymentCode, &b.UserID, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// kalah balapan: status berubah di antara cek dan update
		return Billing{}, ErrStatusFinal
	}
	return b, err
}

// Expire: hanya UNPAID yang dibikin EXPIRED — replay batch cancel untuk
// tagihan yang sudah EXPIRED (atau sudah PAID) jadi no-op.
func (r *Repo) Expire(ctx context.Context, billingID string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE billings SET payment_status=$2, updated_at=now()
		WHERE id=$1 AND payment_status=$3`,
		billingID, string(saga.StatusExpired), string(saga.StatusUnpaid))
	return err
}
