package saga

import "time"

// Alasan invalidasi yang dikenal downstream.
const (
	ReasonOutOfStock         = "OUT_OF_STOCK"
	ReasonProductNotFound    = "PRODUCT_NOT_FOUND"
	ReasonIncompleteUserData = "INCOMPLETE_USER_DATA"
)

// ---- Payload tipe per queue/exchange ----

// ORDER_START
type OrderRequestedPayload struct {
	ProductID     string `json:"product_id"`
	Quantity      int    `json:"quantity"`
	PaymentMethod string `json:"payment_method"`
	Note          string `json:"note,omitempty"`
	UserID        string `json:"user_id"`
}

// ORDER_PRODUCT_VALID: intent + harga + stok sisa setelah decrement.
type StockReservedPayload struct {
	ProductID     string `json:"product_id"`
	Quantity      int    `json:"quantity"`
	Stock         int    `json:"stock"` // snapshot stok sesudah reservasi
	Price         int    `json:"price"`
	PaymentMethod string `json:"payment_method"`
	Note          string `json:"note,omitempty"`
	UserID        string `json:"user_id"`
}

type UserRef struct {
	ID              string `json:"id"`
	ShippingAddress string `json:"shipping_address"`
}

// ORDER_USER_VALID
type UserValidatedPayload struct {
	ProductID     string  `json:"product_id"`
	Quantity      int     `json:"quantity"`
	Stock         int     `json:"stock"`
	Price         int     `json:"price"`
	PaymentMethod string  `json:"payment_method"`
	Note          string  `json:"note,omitempty"`
	User          UserRef `json:"user"`
}

// ORDER_INVALID
type OrderInvalidPayload struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type BillingRef struct {
	ID        string    `json:"id"`
	Amount    int       `json:"amount"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ORDER_FINISH: kelanjutan ORDER_USER_VALID plus tagihan yang sudah terbit.
type OrderCompletedPayload struct {
	UserValidatedPayload
	Billing BillingRef `json:"billing"`
}

// ORDER_SUCCESS_EXCHANGE -> ORDER_CREATE_TEMPORARY_TRANSACTION.
// Satu-satunya catatan yang menghubungkan reservasi dengan stok yang harus
// dikembalikan: log kompensasi.
type LedgerEntryPayload struct {
	OrderID       string    `json:"order_id"`
	ProductID     string    `json:"product_id"`
	BillingID     string    `json:"billing_id"`
	ProductStock  int       `json:"product_stock"`  // snapshot stok saat reservasi
	OrderQuantity int       `json:"order_quantity"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// PAYMENT_EXCHANGE
type PaymentStatusUpdatePayload struct {
	BillingID     string `json:"billing_id"`
	PaymentStatus string `json:"payment_status"`
	ReplyChannel  string `json:"reply_channel"`
}

// Tag pengirim ack pembayaran (pengganti routing key "billing"/"order").
const (
	AckSourceBilling = "billing"
	AckSourceOrder   = "order"
)

// PAYMENT_FINISH_EXCHANGE:<confirm_id>
type PaymentAckPayload struct {
	Source  string       `json:"source"` // billing | order
	OK      bool         `json:"ok"`
	Error   string       `json:"error,omitempty"`
	Billing *BillingData `json:"billing,omitempty"`
	Order   *OrderData   `json:"order,omitempty"`
}

// CREATE_SHIPPING_DATA
type ShippingRequestedPayload struct {
	ConfirmID string    `json:"confirm_id"`
	Order     OrderData `json:"order"`
}

// CREATE_SHIPPING_DATA_SUCCESS
type ShippingCreatedPayload struct {
	ConfirmID string       `json:"confirm_id"`
	OK        bool         `json:"ok"`
	Error     string       `json:"error,omitempty"`
	Shipment  ShipmentData `json:"shipment"`
}

// TRANSACTIONS_CANCEL_EXCHANGE: batch entry ledger yang kedaluwarsa.
type CancelBatchPayload struct {
	Entries []LedgerEntryPayload `json:"entries"`
}

// TRANSACTIONS_CANCEL_SUCCESS_EXCHANGE
type CancelAckPayload struct {
	Service string `json:"service"`
	Expired int    `json:"expired"`
}

// ---- Wire DTO untuk agregat hasil konfirmasi pembayaran ----

type BillingData struct {
	ID            string    `json:"id"`
	Amount        int       `json:"amount"`
	PaymentMethod string    `json:"payment_method"`
	DueDate       time.Time `json:"due_date"`
	PaymentStatus string    `json:"payment_status"`
	PaymentCode   string    `json:"payment_code"`
	UserID        string    `json:"user_id"`
}

type OrderData struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	Quantity        int    `json:"quantity"`
	Price           int    `json:"price"`
	Amount          int    `json:"amount"`
	ShippingAddress string `json:"shipping_address"`
	ShippingCarrier string `json:"shipping_carrier,omitempty"`
	Note            string `json:"note,omitempty"`
	ProductID       string `json:"product_id"`
	BillingID       string `json:"billing_id"`
	UserID          string `json:"user_id"`
}

type ShipmentData struct {
	ID              string `json:"id"`
	Carrier         string `json:"carrier"`
	CurrentLocation string `json:"current_location"`
	ShippingAddress string `json:"shipping_address"`
	Status          string `json:"status"`
	TrackingNumber  string `json:"tracking_number"`
	UserID          string `json:"user_id"`
	OrderID         string `json:"order_id"`
}
