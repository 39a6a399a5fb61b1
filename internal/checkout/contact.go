package checkout

import (
	"context"
	"errors"

	"github.com/naijagasonline/ngo-storefront/pkg/kv"
	"github.com/naijagasonline/ngo-storefront/pkg/logger"
	"go.uber.org/multierr"
)

const (
	nameKey  = "checkout_full_name"
	phoneKey = "checkout_phone"
)

// Contact is the last name and phone used at checkout, offered as defaults.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// ContactStore remembers the checkout contact across sessions.
type ContactStore struct {
	store kv.Store
	name  *kv.Writer
	phone *kv.Writer
}

func NewContactStore(store kv.Store, logg *logger.Logger) *ContactStore {
	return &ContactStore{
		store: store,
		name:  kv.NewWriter(store, nameKey, logg),
		phone: kv.NewWriter(store, phoneKey, logg),
	}
}

// Load returns the remembered contact; missing keys are empty strings.
// Pending writes are flushed first so a just-remembered contact is seen.
// A failed flush is reported alongside whatever the store holds.
func (c *ContactStore) Load(ctx context.Context) (Contact, error) {
	flushErr := c.Flush(ctx)
	name, err := c.get(ctx, nameKey)
	if err != nil {
		return Contact{}, multierr.Append(flushErr, err)
	}
	phone, err := c.get(ctx, phoneKey)
	if err != nil {
		return Contact{}, multierr.Append(flushErr, err)
	}
	return Contact{Name: name, Phone: phone}, flushErr
}

// Remember schedules both values for persistence.
func (c *ContactStore) Remember(contact Contact) {
	c.name.Schedule(contact.Name)
	c.phone.Schedule(contact.Phone)
}

func (c *ContactStore) Flush(ctx context.Context) error {
	return multierr.Combine(c.name.Flush(ctx), c.phone.Flush(ctx))
}

func (c *ContactStore) get(ctx context.Context, key string) (string, error) {
	value, err := c.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return "", nil
	}
	return value, err
}
