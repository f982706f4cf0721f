package shipping

import (
	"context"
	"time"

	"github.com/ariefcatur/saga-fulfillment/internal/saga"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Shipment struct {
	ID              string    `json:"id"`
	Carrier         string    `json:"carrier"`
	CurrentLocation string    `json:"current_location"`
	ShippingAddress string    `json:"shipping_address"`
	Status          string    `json:"status"`
	TrackingNumber  string    `json:"tracking_number"`
	UserID          string    `json:"user_id"`
	OrderID         string    `json:"order_id"`
	CreatedAt       time.Time `json:"created_at"`
}

func (s Shipment) Data() saga.ShipmentData {
	return saga.ShipmentData{
		ID:              s.ID,
		Carrier:         s.Carrier,
		CurrentLocation: s.CurrentLocation,
		ShippingAddress: s.ShippingAddress,
		Status:          s.Status,
		TrackingNumber:  s.TrackingNumber,
		UserID:          s.UserID,
		OrderID:         s.OrderID,
	}
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, s Shipment) (Shipment, error) {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO shippings (id, carrier, current_location, shipping_address, status, tracking_number, user_id, order_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at`,
		s.ID, s.Carrier, s.CurrentLocation, s.ShippingAddress, s.Status, s.TrackingNumber, s.UserID, s.OrderID).
		Scan(&s.CreatedAt)
	return s, err
}
