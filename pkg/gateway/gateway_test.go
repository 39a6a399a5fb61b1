package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/naijagasonline/ngo-storefront/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestGateway(t *testing.T) *GormGateway {
	t.Helper()
	dsn := "file:gateway_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	gw, err := NewGormGateway(conn, time.Second, nil)
	require.NoError(t, err)
	require.NoError(t, gw.EnsureSchema(context.Background()))
	return gw
}

func seedProducts(t *testing.T, gw *GormGateway) {
	t.Helper()
	ctx := context.Background()
	rows := []Row{
		{"id": "cyl-125", "title": "Cylinder 12.5kg", "price": 6500, "kg": "12.5kg", "addons": `["reg-1",{"id":"hose-1"}]`},
		{"id": "reg-1", "title": "Regulator", "price": 4000},
		{"id": "hose-1", "title": "Hose", "price": 2500, "kg": " "},
		{"id": "cyl-6", "title": "Cylinder 6kg", "price": 3800, "kg": "6kg"},
	}
	for _, row := range rows {
		require.NoError(t, gw.InsertRow(ctx, TableProducts, row))
	}
}

func TestInsertRowTreatsDuplicateTxRefAsSuccess(t *testing.T) {
	gw := newTestGateway(t)
	ctx := context.Background()
	row := Row{
		"tx_ref":          "NGO-1700000000000-00042",
		"full_name":       "Ada Obi",
		"phone":           "08030000000",
		"address":         "12 Allen Ave, Ikeja",
		"product":         `[{"id":"cyl-125","qty":2}]`,
		"delivery_method": "door_delivery",
		"payment_mode":    "cod",
		"status":          "pending",
		"total":           13500,
	}
	require.NoError(t, gw.InsertRow(ctx, TableOrders, row))
	require.NoError(t, gw.InsertRow(ctx, TableOrders, row))

	found, err := gw.QueryRows(ctx, TableOrders, Filter{Eq: map[string]any{"tx_ref": "NGO-1700000000000-00042"}})
	require.NoError(t, err)
	require.Len(t, found, 1)
	total, ok := found[0].Int64("total")
	assert.True(t, ok)
	assert.Equal(t, int64(13500), total)
	assert.Equal(t, "Ada Obi", found[0].String("full_name"))
}

func TestInsertRowRejectsUnknownTableAndColumns(t *testing.T) {
	gw := newTestGateway(t)
	ctx := context.Background()

	err := gw.InsertRow(ctx, "users", Row{"id": 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTable))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	err = gw.InsertRow(ctx, TableJoinRequests, Row{"full_name; drop table": "x"})
	assert.True(t, errors.Is(err, ErrInvalidColumn))

	err = gw.InsertRow(ctx, TableJoinRequests, Row{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestInsertRowClassifiesRejectedRows(t *testing.T) {
	gw := newTestGateway(t)
	ctx := context.Background()

	err := gw.InsertRow(ctx, TableJoinRequests, Row{"no_such_column": "x"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "unknown column: %v", err)

	err = gw.InsertRow(ctx, TableJoinRequests, Row{"phone": "0803", "role": "rider"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "missing full_name: %v", err)
	assert.False(t, pkgerrors.MetadataFor(pkgerrors.As(err).Code()).Retryable)
}

func TestInsertRowSurfacesDependencyErrors(t *testing.T) {
	gw := newTestGateway(t)
	sqlDB, err := gw.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	err = gw.InsertRow(context.Background(), TableJoinRequests, Row{"full_name": "Ada", "phone": "0803", "role": "rider"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency), "closed db: %v", err)
}

func TestQueryRowsFilters(t *testing.T) {
	gw := newTestGateway(t)
	seedProducts(t, gw)
	ctx := context.Background()

	all, err := gw.QueryRows(ctx, TableProducts, Filter{OrderBy: "title"})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "Cylinder 12.5kg", all[0].String("title"))
	assert.Equal(t, "Regulator", all[3].String("title"))

	desc, err := gw.QueryRows(ctx, TableProducts, Filter{OrderBy: "price", Desc: true, Limit: 2})
	require.NoError(t, err)
	require.Len(t, desc, 2)
	assert.Equal(t, "cyl-125", desc[0].String("id"))

	some, err := gw.QueryRows(ctx, TableProducts, Filter{In: map[string][]any{"id": {"reg-1", "hose-1"}}, OrderBy: "id"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "hose-1", some[0].String("id"))

	none, err := gw.QueryRows(ctx, TableProducts, Filter{In: map[string][]any{"id": {}}})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = gw.QueryRows(ctx, TableProducts, Filter{OrderBy: "title desc"})
	assert.True(t, errors.Is(err, ErrInvalidColumn))
}

func TestRowStringsDecodesMixedArrays(t *testing.T) {
	gw := newTestGateway(t)
	seedProducts(t, gw)

	rows, err := gw.QueryRows(context.Background(), TableProducts, Filter{Eq: map[string]any{"id": "cyl-125"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"reg-1", "hose-1"}, rows[0].Strings("addons"))

	assert.Nil(t, Row{}.Strings("addons"))
	assert.Nil(t, Row{"addons": "not json"}.Strings("addons"))
	assert.Equal(t, []string{"a"}, Row{"addons": []any{"a", map[string]any{"name": "x"}}}.Strings("addons"))
}

func TestRowNumericAccessors(t *testing.T) {
	row := Row{"price": "6500", "rating": []byte("4.5"), "missing": nil}
	price, ok := row.Int64("price")
	assert.True(t, ok)
	assert.Equal(t, int64(6500), price)

	rating, ok := row.Float64("rating")
	assert.True(t, ok)
	assert.InDelta(t, 4.5, rating, 0.0001)

	_, ok = row.Int64("missing")
	assert.False(t, ok)
	assert.Equal(t, "", row.String("missing"))
}

func TestOfflineGateway(t *testing.T) {
	var gw Gateway = Offline{}
	assert.ErrorIs(t, gw.InsertRow(context.Background(), TableOrders, Row{"a": 1}), ErrOffline)
	_, err := gw.QueryRows(context.Background(), TableProducts, Filter{})
	assert.ErrorIs(t, err, ErrOffline)
}
