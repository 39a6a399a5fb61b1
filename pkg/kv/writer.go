package kv

import (
	"context"
	"sync"
	"time"

	"github.com/naijagasonline/ngo-storefront/pkg/logger"
)

const defaultWriteTimeout = 5 * time.Second

// Writer persists snapshots of one key in the background. Schedule never
// blocks; rapid calls coalesce so only the newest value is guaranteed to be
// written, and it is never dropped. Flush waits for the newest scheduled
// value to reach the store.
type Writer struct {
	store   Store
	key     string
	logg    *logger.Logger
	timeout time.Duration

	mu      sync.Mutex
	cond    *sync.Cond
	pending string
	seq     uint64
	done    uint64
	running bool
	lastErr error
}

func NewWriter(store Store, key string, logg *logger.Logger) *Writer {
	w := &Writer{
		store:   store,
		key:     key,
		logg:    logg,
		timeout: defaultWriteTimeout,
	}
	w.cond = sync.NewCond(&w.mu)
	return w
}

// Key returns the storage key this writer owns.
func (w *Writer) Key() string {
	return w.key
}

// Schedule records value as the newest snapshot and makes sure a background
// write is in flight.
func (w *Writer) Schedule(value string) {
	w.mu.Lock()
	w.pending = value
	w.seq++
	if !w.running {
		w.running = true
		go w.drain()
	}
	w.mu.Unlock()
}

func (w *Writer) drain() {
	for {
		w.mu.Lock()
		if w.done == w.seq {
			w.running = false
			w.cond.Broadcast()
			w.mu.Unlock()
			return
		}
		value, target := w.pending, w.seq
		w.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		err := w.store.Set(ctx, w.key, value)
		cancel()
		if err != nil && w.logg != nil {
			w.logg.WarnErr(w.logg.WithStorageKey(context.Background(), w.key), "background persist failed", err)
		}

		w.mu.Lock()
		w.done = target
		w.lastErr = err
		w.cond.Broadcast()
		w.mu.Unlock()
	}
}

// Flush blocks until every value scheduled before the call has been written
// and returns the error of the most recent write.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	target := w.seq
	if w.done >= target {
		err := w.lastErr
		w.mu.Unlock()
		return err
	}
	w.mu.Unlock()

	result := make(chan error, 1)
	go func() {
		w.mu.Lock()
		for w.done < target {
			w.cond.Wait()
		}
		err := w.lastErr
		w.mu.Unlock()
		result <- err
	}()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
