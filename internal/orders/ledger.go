package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/naijagasonline/ngo-storefront/pkg/enums"
	pkgerrors "github.com/naijagasonline/ngo-storefront/pkg/errors"
	"github.com/naijagasonline/ngo-storefront/pkg/kv"
	"github.com/naijagasonline/ngo-storefront/pkg/logger"
	"github.com/naijagasonline/ngo-storefront/pkg/pagination"
)

// Ledger is the newest-first list of placed orders, persisted whole under
// StorageKey. Writes are synchronous: a returned nil means the list is in
// the store. Read-modify-write cycles are serialized by mu.
type Ledger struct {
	store kv.Store
	logg  *logger.Logger
	mu    sync.Mutex
}

func NewLedger(store kv.Store, logg *logger.Logger) (*Ledger, error) {
	if store == nil {
		return nil, fmt.Errorf("kv store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Ledger{store: store, logg: logg}, nil
}

// Load returns the ledger newest first. Absent or corrupt data is an empty
// ledger; only a failed read is an error.
func (l *Ledger) Load(ctx context.Context) ([]LocalOrder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadLocked(ctx)
}

// Save replaces the whole ledger.
func (l *Ledger) Save(ctx context.Context, list []LocalOrder) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.saveLocked(ctx, cloneAll(list))
}

// AddOrder prepends order and persists the list before returning. An order
// whose tx_ref is already present is rejected with CodeConflict.
func (l *Ledger) AddOrder(ctx context.Context, order LocalOrder) error {
	if strings.TrimSpace(order.TxRef) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order tx_ref is required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	list, err := l.loadLocked(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "read order ledger")
	}
	if indexOf(list, order.TxRef) >= 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "order already recorded")
	}
	list = append([]LocalOrder{order.Clone()}, list...)
	if err := l.saveLocked(ctx, list); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "write order ledger")
	}
	return nil
}

// Get finds an order by id or tx_ref.
func (l *Ledger) Get(ctx context.Context, id string) (LocalOrder, error) {
	list, err := l.Load(ctx)
	if err != nil {
		return LocalOrder{}, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "read order ledger")
	}
	if i := indexOf(list, id); i >= 0 {
		return list[i], nil
	}
	return LocalOrder{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

// Contains reports whether an order with txRef is recorded.
func (l *Ledger) Contains(ctx context.Context, txRef string) (bool, error) {
	list, err := l.Load(ctx)
	if err != nil {
		return false, err
	}
	return indexOf(list, txRef) >= 0, nil
}

// UpdateStatus moves an order to status. Delivered and cancelled orders are final.
func (l *Ledger) UpdateStatus(ctx context.Context, id string, status enums.OrderStatus) (LocalOrder, error) {
	if !status.IsValid() {
		return LocalOrder{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", status))
	}
	var updated LocalOrder
	err := l.modify(ctx, id, func(o *LocalOrder) error {
		if o.Status == status {
			return nil
		}
		if o.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order is already %s", o.Status)).
				WithDetails(map[string]any{"from": o.Status, "to": status})
		}
		o.Status = status
		return nil
	}, &updated)
	return updated, err
}

// UpdateSync records the outcome of mirroring the order remotely.
func (l *Ledger) UpdateSync(ctx context.Context, txRef string, sync enums.SyncStatus) error {
	if !sync.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid sync status %q", sync))
	}
	return l.modify(ctx, txRef, func(o *LocalOrder) error {
		o.Sync = sync
		return nil
	}, nil)
}

// Pending returns up to limit orders still waiting for a remote copy,
// oldest first. Rejected orders are not pending. limit <= 0 returns all
// of them.
func (l *Ledger) Pending(ctx context.Context, limit int) ([]LocalOrder, error) {
	list, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]LocalOrder, 0)
	for i := len(list) - 1; i >= 0; i-- {
		if !list[i].Sync.NeedsResync() {
			continue
		}
		out = append(out, list[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Page is one slice of the ledger for listing.
type Page struct {
	Orders     []LocalOrder `json:"orders"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// List pages through the ledger newest first.
func (l *Ledger) List(ctx context.Context, params pagination.Params) (Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return Page{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	list, err := l.Load(ctx)
	if err != nil {
		return Page{}, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "read order ledger")
	}

	start := 0
	if cursor != nil {
		found := false
		for i, o := range list {
			if o.TxRef == cursor.ID {
				start, found = i+1, true
				break
			}
		}
		if !found {
			// cursor order is gone; fall back to time ordering
			start = sort.Search(len(list), func(i int) bool {
				return list[i].CreatedAt.Before(cursor.CreatedAt)
			})
		}
	}

	limit := pagination.NormalizeLimit(params.Limit)
	end := start + limit
	if end > len(list) {
		end = len(list)
	}
	page := Page{Orders: list[start:end]}
	if end < len(list) && end > start {
		last := list[end-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.TxRef})
	}
	return page, nil
}

func (l *Ledger) modify(ctx context.Context, id string, fn func(*LocalOrder) error, out *LocalOrder) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, err := l.loadLocked(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "read order ledger")
	}
	i := indexOf(list, id)
	if i < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err := fn(&list[i]); err != nil {
		return err
	}
	if err := l.saveLocked(ctx, list); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "write order ledger")
	}
	if out != nil {
		*out = list[i].Clone()
	}
	return nil
}

func (l *Ledger) loadLocked(ctx context.Context) ([]LocalOrder, error) {
	raw, err := l.store.Get(ctx, StorageKey)
	if errors.Is(err, kv.ErrNotFound) {
		return []LocalOrder{}, nil
	}
	if err != nil {
		return []LocalOrder{}, err
	}
	var list []LocalOrder
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		l.logg.WarnErr(l.logg.WithStorageKey(ctx, StorageKey), "discarding corrupt order ledger", err)
		return []LocalOrder{}, nil
	}
	if list == nil {
		list = []LocalOrder{}
	}
	return list, nil
}

func (l *Ledger) saveLocked(ctx context.Context, list []LocalOrder) error {
	if list == nil {
		list = []LocalOrder{}
	}
	payload, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode order ledger: %w", err)
	}
	return l.store.Set(ctx, StorageKey, string(payload))
}

func indexOf(list []LocalOrder, id string) int {
	for i, o := range list {
		if o.TxRef == id || o.ID == id {
			return i
		}
	}
	return -1
}
