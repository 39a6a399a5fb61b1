package orders

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Tx ref prefixes per order source.
const (
	TxRefPrefix        = "NGO"
	ServiceTxRefPrefix = "NGO-SVC"
)

// NewTxRef builds a reference of the form PREFIX-<unix ms>-<5 digits>.
func NewTxRef(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%d-%05d", prefix, now.UnixMilli(), rand.IntN(100000))
}
