package orders

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/naijagasonline/ngo-storefront/pkg/enums"
	pkgerrors "github.com/naijagasonline/ngo-storefront/pkg/errors"
	"github.com/naijagasonline/ngo-storefront/pkg/gateway"
)

// remoteStatus is what the backend expects on freshly submitted rows.
const remoteStatus = "pending"

var integerMeta = map[string]struct{}{
	MetaPrice:  {},
	MetaBudget: {},
}

var serviceColumns = []string{
	MetaServiceType, MetaUrgency, MetaBudget, MetaNotes, MetaAddress, MetaState, MetaCity,
}

var orderColumns = []string{
	MetaAddress, MetaState, MetaCity, MetaKg, MetaPrice, MetaDeliveryOption,
}

// RemoteTable is the backend table an order is mirrored into.
func RemoteTable(o LocalOrder) string {
	if o.DeliveryMethod == enums.DeliveryMethodService {
		return gateway.TableServiceRequests
	}
	return gateway.TableOrders
}

// RemoteRow builds the backend row for o. It is rebuilt from the ledger on
// every attempt, so resync sends the same row as the first try.
func RemoteRow(o LocalOrder) (string, gateway.Row, error) {
	table := RemoteTable(o)
	row := gateway.Row{
		"tx_ref":    o.TxRef,
		"full_name": o.Name,
		"phone":     o.PhoneNumber,
		"address":   o.Address,
		"status":    remoteStatus,
	}

	if table == gateway.TableServiceRequests {
		applyMeta(row, o.Meta, serviceColumns)
		return table, row, nil
	}

	product, err := json.Marshal(o.Product)
	if err != nil {
		return "", nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "encode order product")
	}
	row["product"] = string(product)
	row["delivery_method"] = o.DeliveryMethod.String()
	row["payment_mode"] = o.PaymentMode.String()
	row["total"] = o.Total
	applyMeta(row, o.Meta, orderColumns)
	return table, row, nil
}

// SyncOutcome is the sync status to record after a remote attempt. Typed
// errors whose code is not retryable mean the backend refused the row
// itself, so the order is rejected instead of queued for another try.
func SyncOutcome(err error) enums.SyncStatus {
	if err == nil {
		return enums.SyncStatusOK
	}
	if typed := pkgerrors.As(err); typed != nil && !pkgerrors.MetadataFor(typed.Code()).Retryable {
		return enums.SyncStatusRejected
	}
	return enums.SyncStatusFailed
}

func applyMeta(row gateway.Row, meta map[string]string, columns []string) {
	for _, col := range columns {
		value := strings.TrimSpace(meta[col])
		if value == "" {
			continue
		}
		if _, numeric := integerMeta[col]; numeric {
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				continue
			}
			row[col] = n
			continue
		}
		row[col] = value
	}
}
