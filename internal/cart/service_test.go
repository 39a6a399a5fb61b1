package cart

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"

	"github.com/naijagasonline/ngo-storefront/pkg/config"
	"github.com/naijagasonline/ngo-storefront/pkg/kv"
	"github.com/naijagasonline/ngo-storefront/pkg/logger"
)

var cylinder = Product{ID: "cyl-125", Title: "12.5kg Cylinder", Price: 6500, Image: "https://cdn.example/cyl.png"}

func testPricing() Pricing {
	return NewPricing(config.CheckoutConfig{DeliveryFee: 500, Coupons: map[string]int{"save10": 10}})
}

func newTestService(t *testing.T, store kv.Store) *Service {
	t.Helper()
	if store == nil {
		store = kv.NewMemory()
	}
	svc, err := NewService(store, testPricing(), logger.Nop())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestAddSameProductMergesLine(t *testing.T) {
	svc := newTestService(t, nil)
	svc.Add(cylinder, 1)
	svc.Add(cylinder, 1)

	lines := svc.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	if lines[0].Qty != 2 {
		t.Fatalf("expected qty 2, got %d", lines[0].Qty)
	}
}

func TestAddClampsNonPositiveQty(t *testing.T) {
	svc := newTestService(t, nil)
	svc.Add(cylinder, 0)
	svc.Add(Product{ID: "kg-6", Title: "6kg Refill", Price: 3000}, -4)

	for _, line := range svc.Lines() {
		if line.Qty != 1 {
			t.Fatalf("expected clamped qty 1 for %s, got %d", line.ID, line.Qty)
		}
	}
}

func TestQuantityNeverDropsBelowOne(t *testing.T) {
	svc := newTestService(t, nil)
	ids := []string{"a", "b", "c"}
	for _, id := range ids {
		svc.Add(Product{ID: id, Title: id, Price: 100}, 1)
	}

	rng := rand.New(rand.NewSource(42))
	for step := 0; step < 500; step++ {
		id := ids[rng.Intn(len(ids))]
		switch rng.Intn(4) {
		case 0:
			svc.Inc(id)
		case 1:
			svc.Dec(id)
		case 2:
			svc.SetQty(id, rng.Intn(5)-2)
		case 3:
			svc.Add(Product{ID: id, Title: id, Price: 100}, 1)
		}
		for _, line := range svc.Lines() {
			if line.Qty <= 0 {
				t.Fatalf("step %d: line %s has qty %d", step, line.ID, line.Qty)
			}
		}
	}
}

func TestDecRemovesLastUnit(t *testing.T) {
	svc := newTestService(t, nil)
	svc.Add(cylinder, 1)
	svc.Dec(cylinder.ID)
	if !svc.IsEmpty() {
		t.Fatalf("expected empty cart, got %+v", svc.Lines())
	}
	svc.Dec("missing")
	svc.Inc("missing")
	if !svc.IsEmpty() {
		t.Fatalf("unknown ids must be ignored")
	}
}

func TestSubtotalTracksAddAndRemove(t *testing.T) {
	svc := newTestService(t, nil)
	svc.Add(cylinder, 2)
	before := svc.Subtotal()

	extra := Product{ID: "reg-1", Title: "Regulator", Price: 4200}
	svc.Add(extra, 3)
	if got, want := svc.Subtotal()-before, extra.Price*3; got != want {
		t.Fatalf("subtotal increase = %d, want %d", got, want)
	}

	svc.Remove(extra.ID)
	if got := svc.Subtotal(); got != before {
		t.Fatalf("subtotal after remove = %d, want %d", got, before)
	}
}

func TestTotalsWithoutCoupon(t *testing.T) {
	svc := newTestService(t, nil)
	svc.Add(cylinder, 2)

	totals := svc.Totals()
	if totals.Subtotal != 13000 || totals.DeliveryFee != 500 || totals.Discount != 0 || totals.Total != 13500 {
		t.Fatalf("unexpected totals %+v", totals)
	}
}

func TestTotalsWithCouponIsCaseInsensitive(t *testing.T) {
	svc := newTestService(t, nil)
	svc.Add(cylinder, 2)
	code := "Save10"
	svc.SetCoupon(&code)

	totals := svc.Totals()
	if totals.Discount != 1300 || totals.Total != 12200 {
		t.Fatalf("unexpected totals %+v", totals)
	}
	if svc.Coupon() != "Save10" {
		t.Fatalf("coupon should keep its case, got %q", svc.Coupon())
	}
	if !totals.CouponApplied {
		t.Fatalf("expected coupon applied")
	}
}

func TestUnknownAndEmptyCoupons(t *testing.T) {
	svc := newTestService(t, nil)
	svc.Add(cylinder, 2)

	unknown := "FREEGAS"
	svc.SetCoupon(&unknown)
	if got := svc.Totals(); got.Discount != 0 || got.CouponApplied {
		t.Fatalf("unknown coupon should not discount: %+v", got)
	}

	blank := "   "
	svc.SetCoupon(&blank)
	if svc.Snapshot().Coupon != nil {
		t.Fatalf("blank coupon should be unset")
	}
}

func TestEmptyCartHasNoDeliveryFee(t *testing.T) {
	svc := newTestService(t, nil)
	if got := svc.Totals(); got != (Totals{}) {
		t.Fatalf("expected zero totals, got %+v", got)
	}
}

func TestDiscountRoundsToNearest(t *testing.T) {
	p := testPricing()
	if got := p.Discount(1235, "SAVE10"); got != 124 {
		t.Fatalf("expected 124, got %d", got)
	}
	if got := p.Discount(1234, "SAVE10"); got != 123 {
		t.Fatalf("expected 123, got %d", got)
	}
}

func TestTotalNeverNegative(t *testing.T) {
	p := Pricing{DeliveryFee: 0, Coupons: map[string]int{"ALL": 100}}
	lines := []Line{{ID: "x", Price: 50, Qty: 1}}
	if got := p.Quote(lines, "all").Total; got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestClearResetsCouponAndProof(t *testing.T) {
	svc := newTestService(t, nil)
	svc.Add(cylinder, 1)
	code := "SAVE10"
	svc.SetCoupon(&code)
	svc.SetPaymentProof("file:///receipt.jpg")

	svc.Clear()
	if !svc.IsEmpty() || svc.Coupon() != "" || svc.PaymentProof() != "" {
		t.Fatalf("clear left state behind: lines=%v coupon=%q proof=%q", svc.Lines(), svc.Coupon(), svc.PaymentProof())
	}
}

func TestFlushPersistsLatestState(t *testing.T) {
	store := kv.NewMemory()
	svc := newTestService(t, store)
	svc.Add(cylinder, 1)
	svc.Inc(cylinder.ID)
	code := "SAVE10"
	svc.SetCoupon(&code)
	svc.SetPaymentProof("file:///receipt.jpg")

	if err := svc.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	raw, err := store.Get(context.Background(), StorageKey)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(snap.Lines) != 1 || snap.Lines[0].Qty != 2 {
		t.Fatalf("unexpected persisted lines %+v", snap.Lines)
	}
	if snap.Coupon == nil || *snap.Coupon != "SAVE10" {
		t.Fatalf("unexpected persisted coupon %v", snap.Coupon)
	}

	reloaded := newTestService(t, store)
	if err := reloaded.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if reloaded.Total() != 12200 {
		t.Fatalf("expected reloaded total 12200, got %d", reloaded.Total())
	}
	if reloaded.PaymentProof() != "" {
		t.Fatalf("payment proof must not be persisted")
	}
}

func TestLoadStrictBoundary(t *testing.T) {
	cases := []struct {
		name      string
		raw       string
		wantLines []Line
		wantCoup  bool
	}{
		{name: "corrupt json", raw: "{lines:", wantLines: nil},
		{name: "wrong type", raw: `{"lines":[{"id":"a","price":"cheap","qty":1}]}`, wantLines: nil},
		{
			name: "drops and merges",
			raw: `{"lines":[
				{"id":"a","title":"A","price":100,"qty":1},
				{"id":"","title":"blank","price":100,"qty":1},
				{"id":"b","title":"B","price":-5,"qty":1},
				{"id":"c","title":"C","price":10,"qty":0},
				{"id":"a","title":"A again","price":100,"qty":2}
			],"coupon":""}`,
			wantLines: []Line{{ID: "a", Title: "A", Price: 100, Qty: 3}},
		},
		{name: "coupon kept", raw: `{"lines":[],"coupon":"SAVE10"}`, wantCoup: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := kv.NewMemory()
			if err := store.Set(context.Background(), StorageKey, tc.raw); err != nil {
				t.Fatalf("seed: %v", err)
			}
			svc := newTestService(t, store)
			if err := svc.Load(context.Background()); err != nil {
				t.Fatalf("load: %v", err)
			}
			got := svc.Lines()
			if len(got) != len(tc.wantLines) {
				t.Fatalf("lines = %+v, want %+v", got, tc.wantLines)
			}
			for i := range got {
				if got[i] != tc.wantLines[i] {
					t.Fatalf("line %d = %+v, want %+v", i, got[i], tc.wantLines[i])
				}
			}
			if (svc.Coupon() != "") != tc.wantCoup {
				t.Fatalf("coupon = %q, want set=%v", svc.Coupon(), tc.wantCoup)
			}
		})
	}
}

type brokenStore struct {
	kv.Store
	err error
}

func (b brokenStore) Get(context.Context, string) (string, error) { return "", b.err }

func (b brokenStore) Set(context.Context, string, string) error { return b.err }

func TestLoadReadFailureLeavesEmptyCart(t *testing.T) {
	svc := newTestService(t, brokenStore{Store: kv.NewMemory(), err: errors.New("disk full")})
	if err := svc.Load(context.Background()); err == nil {
		t.Fatalf("expected read error")
	}
	if !svc.IsEmpty() {
		t.Fatalf("expected empty cart")
	}
}

func TestWriteFailureKeepsMemoryStateAndSurfacesOnFlush(t *testing.T) {
	svc := newTestService(t, brokenStore{Store: kv.NewMemory(), err: errors.New("disk full")})
	svc.Add(cylinder, 2)
	if err := svc.Flush(context.Background()); err == nil {
		t.Fatalf("expected flush error")
	}
	if svc.Subtotal() != 13000 {
		t.Fatalf("in-memory cart should survive write failure")
	}
}
