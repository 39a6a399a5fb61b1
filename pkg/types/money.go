package types

import (
	"strconv"
	"strings"
)

const nairaSign = "₦"

// FormatNGN renders a whole-naira amount with thousands separators, e.g. ₦13,500.
func FormatNGN(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	s := strconv.FormatInt(amount, 10)
	var b strings.Builder
	b.Grow(len(s) + len(s)/3 + len(nairaSign) + 1)
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(nairaSign)

	rem := len(s) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(s[:rem])
	for i := rem; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
