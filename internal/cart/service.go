package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/naijagasonline/ngo-storefront/pkg/kv"
	"github.com/naijagasonline/ngo-storefront/pkg/logger"
)

// Service owns the cart. Mutations apply in memory and return immediately;
// the full state is then scheduled for persistence. Flush waits for it.
type Service struct {
	pricing Pricing
	writer  *kv.Writer
	store   kv.Store
	logg    *logger.Logger

	mu     sync.RWMutex
	lines  []Line
	coupon *string
	proof  string
}

// NewService builds an empty cart persisting under StorageKey.
func NewService(store kv.Store, pricing Pricing, logg *logger.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("kv store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{
		pricing: pricing,
		writer:  kv.NewWriter(store, StorageKey, logg),
		store:   store,
		logg:    logg,
	}, nil
}

// Load replaces in-memory state with the persisted cart. A missing or corrupt
// document leaves the cart empty and is not an error; a read failure is
// returned and the cart stays empty.
func (s *Service) Load(ctx context.Context) error {
	raw, err := s.store.Get(ctx, StorageKey)
	if errors.Is(err, kv.ErrNotFound) {
		s.replace(Snapshot{})
		return nil
	}
	if err != nil {
		s.replace(Snapshot{})
		return fmt.Errorf("load cart: %w", err)
	}

	snap, dropped, err := decodeSnapshot(raw)
	if err != nil {
		s.logg.WarnErr(s.logg.WithStorageKey(ctx, StorageKey), "discarding corrupt cart", err)
		s.replace(Snapshot{})
		return nil
	}
	if dropped > 0 {
		s.logg.Warn(s.logg.WithField(s.logg.WithStorageKey(ctx, StorageKey), "dropped_lines", dropped), "discarded malformed cart lines")
	}
	s.replace(snap)
	return nil
}

func (s *Service) replace(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = snap.Lines
	s.coupon = snap.Coupon
	s.proof = ""
}

// Add appends product or increases the existing line. qty below 1 counts as 1.
func (s *Service) Add(p Product, qty int) {
	if qty < 1 {
		qty = 1
	}
	s.mutate(func() {
		if i := s.indexOf(p.ID); i >= 0 {
			s.lines[i].Qty += qty
			return
		}
		s.lines = append(s.lines, Line{
			ID:    p.ID,
			Title: p.Title,
			Price: p.Price,
			Image: p.Image,
			Qty:   qty,
		})
	})
}

func (s *Service) Inc(id string) {
	s.mutate(func() {
		if i := s.indexOf(id); i >= 0 {
			s.lines[i].Qty++
		}
	})
}

// Dec lowers the quantity by one and removes the line when it would drop below 1.
func (s *Service) Dec(id string) {
	s.mutate(func() {
		i := s.indexOf(id)
		if i < 0 {
			return
		}
		if s.lines[i].Qty <= 1 {
			s.removeAt(i)
			return
		}
		s.lines[i].Qty--
	})
}

// SetQty sets an exact quantity; qty <= 0 removes the line.
func (s *Service) SetQty(id string, qty int) {
	s.mutate(func() {
		i := s.indexOf(id)
		if i < 0 {
			return
		}
		if qty <= 0 {
			s.removeAt(i)
			return
		}
		s.lines[i].Qty = qty
	})
}

func (s *Service) Remove(id string) {
	s.mutate(func() {
		if i := s.indexOf(id); i >= 0 {
			s.removeAt(i)
		}
	})
}

// Clear empties the lines and resets the coupon and payment proof.
func (s *Service) Clear() {
	s.mutate(func() {
		s.lines = nil
		s.coupon = nil
		s.proof = ""
	})
}

// SetCoupon stores the raw code. Validation happens when totals are computed.
// Empty input unsets the coupon.
func (s *Service) SetCoupon(code *string) {
	s.mutate(func() {
		s.coupon = normalizeCoupon(code)
	})
}

// SetPaymentProof keeps a transient receipt reference for bank transfers.
// It is never persisted.
func (s *Service) SetPaymentProof(uri string) {
	s.mu.Lock()
	s.proof = uri
	s.mu.Unlock()
}

func (s *Service) PaymentProof() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.proof
}

// Lines returns a copy of the current lines in display order.
func (s *Service) Lines() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CopyLines(s.lines)
}

// Coupon returns the stored code, or "" when unset.
func (s *Service) Coupon() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.coupon == nil {
		return ""
	}
	return *s.coupon
}

func (s *Service) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines) == 0
}

func (s *Service) Subtotal() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Subtotal(s.lines)
}

func (s *Service) DeliveryFee() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pricing.Fee(s.lines)
}

func (s *Service) Discount() int64 {
	return s.Totals().Discount
}

func (s *Service) Total() int64 {
	return s.Totals().Total
}

// Totals computes subtotal, fee, discount and total from the current state.
func (s *Service) Totals() Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coupon := ""
	if s.coupon != nil {
		coupon = *s.coupon
	}
	return s.pricing.Quote(s.lines, coupon)
}

// Snapshot returns a deep copy of the persisted shape.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Flush waits until the latest state has been written and returns the write error.
func (s *Service) Flush(ctx context.Context) error {
	return s.writer.Flush(ctx)
}

func (s *Service) mutate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
	payload, err := json.Marshal(s.snapshotLocked())
	if err != nil {
		s.logg.Error(context.Background(), "encode cart", err)
		return
	}
	// scheduled under the lock so writes land in mutation order
	s.writer.Schedule(string(payload))
}

func (s *Service) snapshotLocked() Snapshot {
	snap := Snapshot{Lines: CopyLines(s.lines)}
	if s.coupon != nil {
		code := *s.coupon
		snap.Coupon = &code
	}
	return snap
}

func (s *Service) indexOf(id string) int {
	for i, line := range s.lines {
		if line.ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) removeAt(i int) {
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
}
