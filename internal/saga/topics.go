package saga

// Kafka work queues (durable, manual commit, satu consumer group per service).
const (
	QueueOrderStart            = "ORDER_START"
	QueueOrderProductValid     = "ORDER_PRODUCT_VALID"
	QueueOrderUserValid        = "ORDER_USER_VALID"
	QueueOrderInvalid          = "ORDER_INVALID"
	QueueOrderFinish           = "ORDER_FINISH"
	QueueCreateShipping        = "CREATE_SHIPPING_DATA"
	QueueCreateShippingSuccess = "CREATE_SHIPPING_DATA_SUCCESS"
)

// Redis pub/sub channels (fanout, transient, tanpa ack).
// Sengaja best-effort: exchange aslinya durable=false.
const (
	ExchangeOrderSuccess       = "ORDER_SUCCESS_EXCHANGE"
	ExchangePayment            = "PAYMENT_EXCHANGE"
	ExchangePaymentFinish      = "PAYMENT_FINISH_EXCHANGE"
	ExchangeCancel             = "TRANSACTIONS_CANCEL_EXCHANGE"
	ExchangeCancelSuccess      = "TRANSACTIONS_CANCEL_SUCCESS_EXCHANGE"
)

// Partition key = correlation id (intake id), supaya event satu saga maintain urutan.
func PartitionKey(id string) []byte { return []byte(id) }

// ReplyChannel: channel balasan eksklusif per request konfirmasi pembayaran.
func ReplyChannel(confirmID string) string {
	return ExchangePaymentFinish + ":" + confirmID
}
