package billing

import "math/rand/v2"

const (
	codeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength = 20
)

// NewPaymentCode: 20 karakter [A-Z0-9]. Tidak perlu kriptografis — keunikan
// dijaga unique constraint di tabel billings.
func NewPaymentCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeChars[rand.IntN(len(codeChars))]
	}
	return string(b)
}
