// Package reference generates the human-typeable identifiers stamped onto
// bookings, shop orders, gift vouchers and adoptions.  The formats are fixed:
// operational tooling and customer confirmation emails parse them, so they
// must stay stable.  Suffixes are random enough to be treated as practically
// unique at park volumes; uniqueness is additionally enforced by the store's
// unique indexes.
package reference

import (
	"crypto/rand"
	"time"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Generator builds references under a fixed site prefix (e.g. "RFP").
type Generator struct {
	prefix string
}

// NewGenerator returns a Generator for the given prefix.
func NewGenerator(prefix string) *Generator {
	return &Generator{prefix: prefix}
}

// Booking returns a booking reference of the form PREFIX-YYMMDD-XXXX, where
// the date stamp is the day the booking was made (not the visit date).
func (g *Generator) Booking(now time.Time) string {
	return g.prefix + "-" + now.Format("060102") + "-" + randomUpper(4)
}

// Order returns a shop order reference of the form PREFIX-SYYMMDD-XXXX.
func (g *Generator) Order(now time.Time) string {
	return g.prefix + "-S" + now.Format("060102") + "-" + randomUpper(4)
}

// VoucherCode returns a gift voucher code of the form PREFIX-VXXXXXXXX.
func (g *Generator) VoucherCode() string {
	return g.prefix + "-V" + randomUpper(8)
}

// Adoption returns an animal adoption reference of the form PREFIX-AXXXXXX.
func (g *Generator) Adoption() string {
	return g.prefix + "-A" + randomUpper(6)
}

// randomUpper draws n characters from the mixed-case alphanumeric alphabet
// and upper-cases the result, as the confirmation tooling expects.
func randomUpper(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	out := make([]byte, n)
	for i, b := range buf {
		ch := alphabet[int(b)%len(alphabet)]
		if ch >= 'a' && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		out[i] = ch
	}
	return string(out)
}
