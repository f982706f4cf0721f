package saga

// Status pembayaran dipakai billing dan order (order mengikuti lifecycle billing).
type Status string

const (
	StatusUnpaid  Status = "UNPAID"
	StatusPaid    Status = "PAID"
	StatusExpired Status = "EXPIRED"
)

var validNext = map[Status]map[Status]bool{
	StatusUnpaid:  {StatusPaid: true, StatusExpired: true},
	StatusPaid:    {},
	StatusExpired: {},
}

// CanTransition: PAID dan EXPIRED bersifat final.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusUnpaid, StatusPaid, StatusExpired:
		return true
	}
	return false
}
