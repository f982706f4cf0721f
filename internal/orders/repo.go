package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/saga-fulfillment/internal/saga"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Order struct {
	ID              string    `json:"id"`
	Status          string    `json:"status"`
	Quantity        int       `json:"quantity"`
	Price           int       `json:"price"`
	Amount          int       `json:"amount"`
	ShippingAddress string    `json:"shipping_address"`
	ShippingCarrier string    `json:"shipping_carrier,omitempty"`
	Note            string    `json:"note,omitempty"`
	ProductID       string    `json:"product_id"`
	BillingID       string    `json:"billing_id"`
	UserID          string    `json:"user_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (o Order) Data() saga.OrderData {
	return saga.OrderData{
		ID:              o.ID,
		Status:          o.Status,
		Quantity:        o.Quantity,
		Price:           o.Price,
		Amount:          o.Amount,
		ShippingAddress: o.ShippingAddress,
		ShippingCarrier: o.ShippingCarrier,
		Note:            o.Note,
		ProductID:       o.ProductID,
		BillingID:       o.BillingID,
		UserID:          o.UserID,
	}
}

var (
	ErrNotFound    = errors.New("order not found")
	ErrStatusFinal = errors.New("order status is final")
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, o Order) (Order, error) {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO orders (id, status, quantity, price, amount, shipping_address, shipping_carrier, note, product_id, billing_id, user_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		o.ID, o.Status, o.Quantity, o.Price, o.Amount, o.ShippingAddress, o.ShippingCarrier, o.Note, o.ProductID, o.BillingID, o.UserID).
		Scan(&o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (r *Repo) GetByID(ctx context.Context, id string) (Order, error) {
	o, err := r.scanOne(r.DB.QueryRow(ctx, selectOrder+` WHERE id=$1`, id))
	return o, err
}

// UpdateStatusByBillingID: order mengikuti lifecycle billing, kunci mutasinya
// billing id (satu billing maksimal satu order). PAID dan EXPIRED final, sama
// seperti sisi billing.
func (r *Repo) UpdateStatusByBillingID(ctx context.Context, billingID, status string) (Order, error) {
	var cur string
	err := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE billing_id=$1`, billingID).Scan(&cur)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	if !saga.CanTransition(saga.Status(cur), saga.Status(status)) {
		return Order{}, fmt.Errorf("%w: %s -> %s", ErrStatusFinal, cur, status)
	}

	o, err := r.scanOne(r.DB.QueryRow(ctx, `
		UPDATE orders SET status=$2, updated_at=now()
		WHERE billing_id=$1 AND status=$3
		RETURNING id, status, quantity, price, amount, shipping_address, COALESCE(shipping_carrier,''), COALESCE(note,''), product_id, billing_id, user_id, created_at, updated_at`,
		billingID, status, cur))
	if errors.Is(err, ErrNotFound) {
		// kalah balapan: status berubah di antara cek dan update
		return Order{}, ErrStatusFinal
	}
	return o, err
}

// Expire: idempotent, order yang sudah EXPIRED/PAID tidak tersentuh.
func (r *Repo) Expire(ctx context.Context, orderID string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE orders SET status=$2, updated_at=now()
		WHERE id=$1 AND status=$3`,
		orderID, string(saga.StatusExpired), string(saga.StatusUnpaid))
	return err
}

const selectOrder = `
	SELECT id, status, quantity, price, amount, shipping_address, COALESCE(shipping_carrier,''), COALESCE(note,''), product_id, billing_id, user_id, created_at, updated_at
	FROM orders`

func (r *Repo) scanOne(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.Status, &o.Quantity, &o.Price, &o.Amount, &o.ShippingAddress, &o.ShippingCarrier, &o.Note, &o.ProductID, &o.BillingID, &o.UserID, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}
