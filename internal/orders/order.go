package orders

import (
	"time"

	"github.com/naijagasonline/ngo-storefront/internal/cart"
	"github.com/naijagasonline/ngo-storefront/pkg/enums"
)

// StorageKey is the kv key holding the serialized ledger.
const StorageKey = "local_orders_v1"

// Meta keys carried on an order for the remote row.
const (
	MetaState          = "state"
	MetaCity           = "city"
	MetaAddress        = "address"
	MetaKg             = "kg"
	MetaPrice          = "price"
	MetaDeliveryOption = "delivery_option"
	MetaServiceType    = "service_type"
	MetaUrgency        = "urgency"
	MetaBudget         = "budget"
	MetaNotes          = "notes"
)

// LocalOrder is the on-device record of a placed order. Product, Total and
// CreatedAt never change once it is in the ledger; only Status and Sync do.
type LocalOrder struct {
	ID             string               `json:"id"`
	TxRef          string               `json:"tx_ref"`
	CreatedAt      time.Time            `json:"created_at"`
	Name           string               `json:"name"`
	PhoneNumber    string               `json:"phonenumber"`
	Address        string               `json:"address"`
	Product        []cart.Line          `json:"product"`
	DeliveryMethod enums.DeliveryMethod `json:"delivery_method"`
	PaymentMode    enums.PaymentMode    `json:"payment_mode"`
	Status         enums.OrderStatus    `json:"status"`
	Total          int64                `json:"total"`
	Sync           enums.SyncStatus     `json:"sync,omitempty"`
	Meta           map[string]string    `json:"meta,omitempty"`
}

// Clone returns a deep copy.
func (o LocalOrder) Clone() LocalOrder {
	out := o
	out.Product = cart.CopyLines(o.Product)
	if o.Meta != nil {
		out.Meta = make(map[string]string, len(o.Meta))
		for k, v := range o.Meta {
			out.Meta[k] = v
		}
	}
	return out
}

func cloneAll(list []LocalOrder) []LocalOrder {
	out := make([]LocalOrder, len(list))
	for i, o := range list {
		out[i] = o.Clone()
	}
	return out
}
