// Package gateway is the storefront's view of the remote backend: a
// generic insert-row / query-rows surface over a handful of known tables.
package gateway

import (
	"context"
	"errors"
	"regexp"
)

const (
	TableProducts        = "products"
	TableProductAddons   = "product_addons"
	TableOrders          = "orders"
	TableServiceRequests = "service_requests"
	TableJoinRequests    = "join_requests"
)

var (
	// ErrOffline is returned by every call on a gateway without a backend.
	ErrOffline = errors.New("gateway: backend not configured")
	// ErrUnknownTable is returned for tables outside the allow-list.
	ErrUnknownTable = errors.New("gateway: unknown table")
	// ErrInvalidColumn is returned for column names that are not plain identifiers.
	ErrInvalidColumn = errors.New("gateway: invalid column name")
)

var columnRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

var allowedTables = map[string]struct{}{
	TableProducts:        {},
	TableProductAddons:   {},
	TableOrders:          {},
	TableServiceRequests: {},
	TableJoinRequests:    {},
}

// Gateway is the remote catalog and submission surface.
type Gateway interface {
	InsertRow(ctx context.Context, table string, row Row) error
	QueryRows(ctx context.Context, table string, filter Filter) ([]Row, error)
}

// Filter narrows QueryRows. Zero value selects every row in storage order.
type Filter struct {
	Eq      map[string]any
	In      map[string][]any
	OrderBy string
	Desc    bool
	Limit   int
}

func validTable(table string) error {
	if _, ok := allowedTables[table]; !ok {
		return ErrUnknownTable
	}
	return nil
}

func validColumn(name string) error {
	if !columnRe.MatchString(name) {
		return ErrInvalidColumn
	}
	return nil
}

// Offline fails every call with ErrOffline. It stands in for the backend
// when no gateway DSN is configured, so orders stay queued locally.
type Offline struct{}

func (Offline) InsertRow(context.Context, string, Row) error {
	return ErrOffline
}

func (Offline) QueryRows(context.Context, string, Filter) ([]Row, error) {
	return nil, ErrOffline
}
