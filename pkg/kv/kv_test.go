package kv

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:kv_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	_, err := store.Get(ctx, "cart-store")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "cart-store", `{"lines":[]}`))
	got, err := store.Get(ctx, "cart-store")
	require.NoError(t, err)
	assert.Equal(t, `{"lines":[]}`, got)

	require.NoError(t, store.Remove(ctx, "cart-store"))
	_, err = store.Get(ctx, "cart-store")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "a", "1"))
	require.NoError(t, store.Set(ctx, "b", "2"))
	require.NoError(t, store.Clear(ctx))
	assert.Equal(t, 0, store.Len())
}

func TestGormStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	store, err := NewGormStore(db, "ngo")
	require.NoError(t, err)
	require.NoError(t, store.EnsureSchema(ctx))

	_, err = store.Get(ctx, "ngo.addresses")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "ngo.addresses", `{"addresses":[]}`))
	require.NoError(t, store.Set(ctx, "ngo.addresses", `{"addresses":[{"id":"a"}]}`))

	got, err := store.Get(ctx, "ngo.addresses")
	require.NoError(t, err)
	assert.Equal(t, `{"addresses":[{"id":"a"}]}`, got)

	var count int64
	require.NoError(t, db.Model(&Entry{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "upsert must not duplicate rows")

	require.NoError(t, store.Remove(ctx, "ngo.addresses"))
	_, err = store.Get(ctx, "ngo.addresses")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStoreClearIsNamespaced(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	mine, err := NewGormStore(db, "ngo")
	require.NoError(t, err)
	other, err := NewGormStore(db, "other")
	require.NoError(t, err)
	require.NoError(t, mine.EnsureSchema(ctx))

	require.NoError(t, mine.Set(ctx, "local_orders_v1", "[]"))
	require.NoError(t, other.Set(ctx, "local_orders_v1", "[1]"))

	require.NoError(t, mine.Clear(ctx))

	_, err = mine.Get(ctx, "local_orders_v1")
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := other.Get(ctx, "local_orders_v1")
	require.NoError(t, err)
	assert.Equal(t, "[1]", got)
}

func TestNewGormStoreValidates(t *testing.T) {
	_, err := NewGormStore(nil, "ngo")
	assert.Error(t, err)
	_, err = NewGormStore(newTestDB(t), "  ")
	assert.Error(t, err)
}

type slowStore struct {
	mu     sync.Mutex
	writes []string
	delay  time.Duration
	err    error
}

func (s *slowStore) Get(context.Context, string) (string, error) { return "", ErrNotFound }
func (s *slowStore) Remove(context.Context, string) error        { return nil }
func (s *slowStore) Clear(context.Context) error                 { return nil }

func (s *slowStore) Set(_ context.Context, _ string, value string) error {
	time.Sleep(s.delay)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, value)
	return s.err
}

func (s *slowStore) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.writes...)
}

func TestWriterFlushPersistsLatestValue(t *testing.T) {
	store := &slowStore{delay: 5 * time.Millisecond}
	w := NewWriter(store, "cart-store", nil)

	for _, v := range []string{"1", "2", "3", "4", "5"} {
		w.Schedule(v)
	}
	require.NoError(t, w.Flush(context.Background()))

	writes := store.snapshot()
	require.NotEmpty(t, writes)
	assert.Equal(t, "5", writes[len(writes)-1])
	assert.LessOrEqual(t, len(writes), 5, "writes coalesce")
}

func TestWriterFlushWithoutWritesIsNoop(t *testing.T) {
	w := NewWriter(&slowStore{}, "cart-store", nil)
	assert.NoError(t, w.Flush(context.Background()))
}

func TestWriterFlushReportsFailure(t *testing.T) {
	boom := errors.New("disk full")
	w := NewWriter(&slowStore{err: boom}, "cart-store", nil)

	w.Schedule("1")
	err := w.Flush(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestWriterFlushHonoursContext(t *testing.T) {
	w := NewWriter(&slowStore{delay: 200 * time.Millisecond}, "cart-store", nil)
	w.Schedule("1")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := w.Flush(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, w.Flush(context.Background()))
}
