package address

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	pkgerrors "github.com/naijagasonline/ngo-storefront/pkg/errors"
	"github.com/naijagasonline/ngo-storefront/pkg/kv"
	"github.com/naijagasonline/ngo-storefront/pkg/logger"
)

// Book keeps saved addresses with exactly one default whenever it is
// non-empty. Every mutation restores that and schedules a full persist.
type Book struct {
	store  kv.Store
	writer *kv.Writer
	logg   *logger.Logger
	newID  func() string

	mu    sync.RWMutex
	items []Address
}

func NewBook(store kv.Store, logg *logger.Logger) (*Book, error) {
	if store == nil {
		return nil, fmt.Errorf("kv store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Book{
		store:  store,
		writer: kv.NewWriter(store, StorageKey, logg),
		logg:   logg,
		newID:  uuid.NewString,
	}, nil
}

// Load reads the persisted book. Absent or corrupt data yields an empty book.
// A book that violates the default rule is repaired in memory and rewritten.
func (b *Book) Load(ctx context.Context) error {
	raw, err := b.store.Get(ctx, StorageKey)
	if errors.Is(err, kv.ErrNotFound) {
		b.setItems(nil)
		return nil
	}
	if err != nil {
		b.setItems(nil)
		return fmt.Errorf("load addresses: %w", err)
	}

	var doc document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		b.logg.WarnErr(b.logg.WithStorageKey(ctx, StorageKey), "discarding corrupt address book", err)
		b.setItems(nil)
		return nil
	}

	items := make([]Address, 0, len(doc.Addresses))
	seen := make(map[string]struct{}, len(doc.Addresses))
	for _, a := range doc.Addresses {
		if strings.TrimSpace(a.ID) == "" {
			continue
		}
		if _, dup := seen[a.ID]; dup {
			continue
		}
		seen[a.ID] = struct{}{}
		items = append(items, a)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = items
	if repairDefault(b.items) || len(items) != len(doc.Addresses) {
		b.logg.Warn(b.logg.WithStorageKey(ctx, StorageKey), "repaired address book")
		b.persistLocked()
	}
	return nil
}

func (b *Book) setItems(items []Address) {
	b.mu.Lock()
	b.items = items
	b.mu.Unlock()
}

// Add stores a new address and returns it with its generated id. The first
// address always becomes the default.
func (b *Book) Add(d Draft) (Address, error) {
	label := strings.TrimSpace(d.Label)
	if label == "" {
		return Address{}, pkgerrors.New(pkgerrors.CodeValidation, "label is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	a := Address{
		ID:        b.newID(),
		Label:     label,
		Lat:       d.Lat,
		Lng:       d.Lng,
		Details:   strings.TrimSpace(d.Details),
		IsDefault: d.IsDefault || len(b.items) == 0,
	}
	if a.IsDefault {
		demoteAll(b.items)
	}
	b.items = append(b.items, a)
	b.persistLocked()
	return a, nil
}

// Update merges patch into the address. Setting IsDefault to true demotes the
// rest; clearing it on the current default is ignored.
func (b *Book) Update(id string, patch Patch) (Address, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return Address{}, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	if patch.Label != nil {
		label := strings.TrimSpace(*patch.Label)
		if label == "" {
			return Address{}, pkgerrors.New(pkgerrors.CodeValidation, "label cannot be empty")
		}
		b.items[i].Label = label
	}
	if patch.Lat != nil {
		b.items[i].Lat = *patch.Lat
	}
	if patch.Lng != nil {
		b.items[i].Lng = *patch.Lng
	}
	if patch.Details != nil {
		b.items[i].Details = strings.TrimSpace(*patch.Details)
	}
	if patch.IsDefault != nil && *patch.IsDefault {
		demoteAll(b.items)
		b.items[i].IsDefault = true
	}
	b.persistLocked()
	return b.items[i], nil
}

// Remove deletes the address. When it was the default the first remaining
// entry is promoted. Reports whether anything was removed.
func (b *Book) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return false
	}
	wasDefault := b.items[i].IsDefault
	b.items = append(b.items[:i], b.items[i+1:]...)
	if wasDefault && len(b.items) > 0 {
		b.items[0].IsDefault = true
	}
	b.persistLocked()
	return true
}

// SetDefault makes id the default. Unknown ids are a no-op and report false.
func (b *Book) SetDefault(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return false
	}
	demoteAll(b.items)
	b.items[i].IsDefault = true
	b.persistLocked()
	return true
}

func (b *Book) GetByID(id string) (Address, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i := b.indexOf(id); i >= 0 {
		return b.items[i], true
	}
	return Address{}, false
}

func (b *Book) GetDefault() (Address, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, a := range b.items {
		if a.IsDefault {
			return a, true
		}
	}
	return Address{}, false
}

// List returns a copy of every address in insertion order.
func (b *Book) List() []Address {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Address, len(b.items))
	copy(out, b.items)
	return out
}

func (b *Book) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = nil
	b.persistLocked()
}

// Flush waits for the latest persisted snapshot.
func (b *Book) Flush(ctx context.Context) error {
	return b.writer.Flush(ctx)
}

func (b *Book) persistLocked() {
	doc := document{Addresses: make([]Address, len(b.items))}
	copy(doc.Addresses, b.items)
	payload, err := json.Marshal(doc)
	if err != nil {
		b.logg.Error(context.Background(), "encode address book", err)
		return
	}
	b.writer.Schedule(string(payload))
}

func (b *Book) indexOf(id string) int {
	for i, a := range b.items {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func demoteAll(items []Address) {
	for i := range items {
		items[i].IsDefault = false
	}
}

// repairDefault enforces one default on a loaded book: the first flagged
// entry wins, else the first entry. Reports whether anything changed.
func repairDefault(items []Address) bool {
	if len(items) == 0 {
		return false
	}
	changed := false
	found := false
	for i := range items {
		if !items[i].IsDefault {
			continue
		}
		if found {
			items[i].IsDefault = false
			changed = true
			continue
		}
		found = true
	}
	if !found {
		items[0].IsDefault = true
		changed = true
	}
	return changed
}
