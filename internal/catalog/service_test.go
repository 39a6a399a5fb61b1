package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/naijagasonline/ngo-storefront/internal/cart"
	pkgerrors "github.com/naijagasonline/ngo-storefront/pkg/errors"
	"github.com/naijagasonline/ngo-storefront/pkg/gateway"
	"github.com/naijagasonline/ngo-storefront/pkg/kv"
	"github.com/naijagasonline/ngo-storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway answers Eq, In and OrderBy over in-memory tables.
type fakeGateway struct {
	tables map[string][]gateway.Row
	fail   map[string]error
}

func (f *fakeGateway) InsertRow(context.Context, string, gateway.Row) error {
	return errors.New("read only")
}

func (f *fakeGateway) QueryRows(_ context.Context, table string, filter gateway.Filter) ([]gateway.Row, error) {
	if err := f.fail[table]; err != nil {
		return nil, err
	}
	out := make([]gateway.Row, 0)
	for _, row := range f.tables[table] {
		if !matchEq(row, filter.Eq) || !matchIn(row, filter.In) {
			continue
		}
		out = append(out, row)
	}
	if filter.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].String(filter.OrderBy) < out[j].String(filter.OrderBy)
		})
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matchEq(row gateway.Row, eq map[string]any) bool {
	for k, v := range eq {
		if row.String(k) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}

func matchIn(row gateway.Row, in map[string][]any) bool {
	for k, values := range in {
		found := false
		for _, v := range values {
			if row.String(k) == fmt.Sprint(v) {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func newFixture() *fakeGateway {
	return &fakeGateway{
		tables: map[string][]gateway.Row{
			gateway.TableProducts: {
				{"id": "cyl-6", "title": "Cylinder 6kg", "price": int64(3800), "kg": "6kg", "seller_name": "Gas Hub", "state": "lagos", "city": "Ikeja"},
				{"id": "cyl-125", "title": "Cylinder 12.5kg", "price": int64(6500), "refill_price": int64(5000), "new_cylinder_price": int64(21000), "kg": " 12.5kg ", "addons": `["reg-1",{"id":"hose-1"}]`, "rating": 4.5},
				{"id": "reg-1", "title": "Regulator", "price": int64(4000)},
				{"id": "hose-1", "title": "Hose", "price": int64(2500)},
				{"id": "cyl-3", "title": "Burner 3kg", "price": int64(2100), "kg": "6kg"},
				{"title": "orphan"},
			},
			gateway.TableProductAddons: {
				{"product_id": "cyl-6", "addon_id": "reg-1"},
			},
		},
		fail: map[string]error{},
	}
}

func newTestService(t *testing.T, gw gateway.Gateway) *Service {
	t.Helper()
	svc, err := NewService(gw, logger.Nop())
	require.NoError(t, err)
	return svc
}

func TestListOrdersByTitleAndSkipsMalformedRows(t *testing.T) {
	svc := newTestService(t, newFixture())
	products, err := svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)

	titles := make([]string, len(products))
	for i, p := range products {
		titles[i] = p.Title
	}
	assert.Equal(t, []string{"Burner 3kg", "Cylinder 12.5kg", "Cylinder 6kg", "Hose", "Regulator"}, titles)
}

func TestListFilters(t *testing.T) {
	svc := newTestService(t, newFixture())

	byQuery, err := svc.List(context.Background(), ListFilter{Query: "gas hub"})
	require.NoError(t, err)
	require.Len(t, byQuery, 1)
	assert.Equal(t, "cyl-6", byQuery[0].ID)

	byKg, err := svc.List(context.Background(), ListFilter{Kg: "12.5kg"})
	require.NoError(t, err)
	require.Len(t, byKg, 1)
	assert.Equal(t, "cyl-125", byKg[0].ID)
}

func TestGet(t *testing.T) {
	svc := newTestService(t, newFixture())
	p, err := svc.Get(context.Background(), "cyl-125")
	require.NoError(t, err)
	assert.True(t, p.HasDualPrices())
	require.NotNil(t, p.Rating)
	assert.Equal(t, 4.5, *p.Rating)
	assert.Equal(t, int64(5000), p.PriceFor(PriceRefill))
	assert.Equal(t, int64(21000), p.CartProduct(PriceNewCylinder).Price)
	assert.Equal(t, int64(6500), p.CartProduct(PriceDefault).Price)

	_, err = svc.Get(context.Background(), "nope")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = svc.Get(context.Background(), " ")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestPriceForFallsBackToBasePrice(t *testing.T) {
	p := Product{ID: "x", Price: 900}
	assert.False(t, p.HasDualPrices())
	assert.Equal(t, int64(900), p.PriceFor(PriceRefill))
}

func TestAddonsFromColumn(t *testing.T) {
	svc := newTestService(t, newFixture())
	addons, err := svc.Addons(context.Background(), "cyl-125")
	require.NoError(t, err)
	require.Len(t, addons, 2)
	assert.Equal(t, "hose-1", addons[0].ID)
	assert.Equal(t, "reg-1", addons[1].ID)
}

func TestAddonsFromRelation(t *testing.T) {
	svc := newTestService(t, newFixture())
	addons, err := svc.Addons(context.Background(), "cyl-6")
	require.NoError(t, err)
	require.Len(t, addons, 1)
	assert.Equal(t, "reg-1", addons[0].ID)
}

func TestAddonsAreBestEffort(t *testing.T) {
	gw := newFixture()
	gw.fail[gateway.TableProductAddons] = errors.New("relation missing")
	svc := newTestService(t, gw)

	addons, err := svc.Addons(context.Background(), "cyl-6")
	require.NoError(t, err)
	assert.Empty(t, addons)
}

func TestCategoriesAreDistinctTrimmedKg(t *testing.T) {
	svc := newTestService(t, newFixture())
	cats, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"6kg", "12.5kg"}, cats)
}

func TestListSurfacesGatewayFailure(t *testing.T) {
	gw := newFixture()
	gw.fail[gateway.TableProducts] = gateway.ErrOffline
	svc := newTestService(t, gw)
	_, err := svc.List(context.Background(), ListFilter{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.ErrorIs(t, err, gateway.ErrOffline)
}

func TestCartProductKeepsPriceOptionsApart(t *testing.T) {
	refill, fresh := int64(4000), int64(15000)
	p := Product{ID: "cyl-125", Title: "Cylinder 12.5kg", Price: 6500, RefillPrice: &refill, NewCylinderPrice: &fresh}

	svc, err := cart.NewService(kv.NewMemory(), cart.Pricing{}, logger.Nop())
	require.NoError(t, err)
	svc.Add(p.CartProduct(PriceRefill), 1)
	svc.Add(p.CartProduct(PriceNewCylinder), 1)
	svc.Add(p.CartProduct(PriceRefill), 1)

	lines := svc.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "cyl-125:refill", lines[0].ID)
	assert.Equal(t, "Cylinder 12.5kg (Refill)", lines[0].Title)
	assert.Equal(t, 2, lines[0].Qty)
	assert.Equal(t, "cyl-125:new", lines[1].ID)
	assert.Equal(t, "Cylinder 12.5kg (New cylinder)", lines[1].Title)
	assert.Equal(t, int64(23000), svc.Subtotal())
}

func TestCartProductWithoutOptionPriceFallsBackToDefault(t *testing.T) {
	p := Product{ID: "cyl-6", Title: "Cylinder 6kg", Price: 3800}

	got := p.CartProduct(PriceRefill)
	assert.Equal(t, "cyl-6", got.ID)
	assert.Equal(t, "Cylinder 6kg", got.Title)
	assert.Equal(t, int64(3800), got.Price)
	assert.Equal(t, "cyl-6", LineID("cyl-6", ""))
}
