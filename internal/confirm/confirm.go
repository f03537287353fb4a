package confirm

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Order ids are short opaque strings from the backend; the shortest it
// issues is four characters ("ORD1"). Anything below that cannot be real and
// is bounced home without a backend call.
const minOrderIDLength = 4

// Result is what the confirmation page renders. No polling happens after
// this; the page shows a static outcome.
type Result struct {
	Status         string `json:"status"`
	OrderID        string `json:"orderId"`
	Total          string `json:"total"`
	TotalFormatted string `json:"totalFormatted"`
}

// formatRupiah renders a whole-rupiah amount with dot thousand separators,
// e.g. 150000 -> "Rp 150.000".
func formatRupiah(d decimal.Decimal) string {
	n := d.Round(0).IntPart()
	neg := n < 0
	if neg {
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	out := "Rp " + strings.Join(groups, ".")
	if neg {
		out = "-" + out
	}
	return out
}
