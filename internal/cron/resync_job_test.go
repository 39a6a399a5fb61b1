package cron

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/naijagasonline/ngo-storefront/internal/cart"
	"github.com/naijagasonline/ngo-storefront/internal/orders"
	"github.com/naijagasonline/ngo-storefront/pkg/enums"
	pkgerrors "github.com/naijagasonline/ngo-storefront/pkg/errors"
	"github.com/naijagasonline/ngo-storefront/pkg/gateway"
	"github.com/naijagasonline/ngo-storefront/pkg/kv"
	"github.com/naijagasonline/ngo-storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type insertCall struct {
	table string
	row   gateway.Row
}

type scriptedGateway struct {
	mu      sync.Mutex
	calls   []insertCall
	failFor map[string]error
	err     error
}

func (g *scriptedGateway) InsertRow(_ context.Context, table string, row gateway.Row) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, insertCall{table: table, row: row})
	if g.err != nil {
		return g.err
	}
	return g.failFor[row.String("tx_ref")]
}

func (g *scriptedGateway) QueryRows(context.Context, string, gateway.Filter) ([]gateway.Row, error) {
	return nil, nil
}

var resyncBase = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func ledgerOrder(n int, sync enums.SyncStatus) orders.LocalOrder {
	ref := fmt.Sprintf("NGO-%d-%05d", resyncBase.Add(time.Duration(n)*time.Minute).UnixMilli(), n)
	return orders.LocalOrder{
		ID:             ref,
		TxRef:          ref,
		CreatedAt:      resyncBase.Add(time.Duration(n) * time.Minute),
		Name:           "Ada Obi",
		PhoneNumber:    "08030000000",
		Address:        "12 Allen Ave, Ikeja",
		Product:        []cart.Line{{ID: "cyl-125", Title: "12.5kg", Price: 6500, Qty: 2}},
		DeliveryMethod: enums.DeliveryMethodDoor,
		PaymentMode:    enums.PaymentModeCOD,
		Status:         enums.OrderStatusPlaced,
		Total:          13500,
		Sync:           sync,
	}
}

func seededLedger(t *testing.T, list ...orders.LocalOrder) *orders.Ledger {
	t.Helper()
	ledger, err := orders.NewLedger(kv.NewMemory(), logger.Nop())
	require.NoError(t, err)
	for _, o := range list {
		require.NoError(t, ledger.AddOrder(context.Background(), o))
	}
	return ledger
}

func syncOf(t *testing.T, ledger *orders.Ledger, txRef string) enums.SyncStatus {
	t.Helper()
	o, err := ledger.Get(context.Background(), txRef)
	require.NoError(t, err)
	return o.Sync
}

func TestResyncPushesPendingOldestFirst(t *testing.T) {
	queued := ledgerOrder(1, enums.SyncStatusQueued)
	synced := ledgerOrder(2, enums.SyncStatusOK)
	failed := ledgerOrder(3, enums.SyncStatusFailed)
	ledger := seededLedger(t, queued, synced, failed)
	gw := &scriptedGateway{}

	job, err := NewResyncJob(ResyncJobParams{Ledger: ledger, Gateway: gw})
	require.NoError(t, err)
	report, err := job.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Report{Attempted: 2, Synced: 2}, report)
	require.Len(t, gw.calls, 2)
	assert.Equal(t, queued.TxRef, gw.calls[0].row.String("tx_ref"))
	assert.Equal(t, failed.TxRef, gw.calls[1].row.String("tx_ref"))
	assert.Equal(t, gateway.TableOrders, gw.calls[0].table)

	for _, o := range []orders.LocalOrder{queued, synced, failed} {
		assert.Equal(t, enums.SyncStatusOK, syncOf(t, ledger, o.TxRef))
	}
}

func TestResyncMarksFailuresAndContinues(t *testing.T) {
	first := ledgerOrder(1, enums.SyncStatusQueued)
	second := ledgerOrder(2, enums.SyncStatusQueued)
	ledger := seededLedger(t, first, second)
	gw := &scriptedGateway{failFor: map[string]error{first.TxRef: errors.New("503")}}

	job, err := NewResyncJob(ResyncJobParams{Ledger: ledger, Gateway: gw})
	require.NoError(t, err)
	report, err := job.Sync(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), first.TxRef)
	assert.Equal(t, Report{Attempted: 2, Synced: 1, Failed: 1}, report)
	assert.Equal(t, enums.SyncStatusFailed, syncOf(t, ledger, first.TxRef))
	assert.Equal(t, enums.SyncStatusOK, syncOf(t, ledger, second.TxRef))
}

func TestResyncRejectedRowsDoNotStarveNewerOrders(t *testing.T) {
	bad1 := ledgerOrder(1, enums.SyncStatusQueued)
	bad2 := ledgerOrder(2, enums.SyncStatusFailed)
	fresh := ledgerOrder(3, enums.SyncStatusQueued)
	ledger := seededLedger(t, bad1, bad2, fresh)
	refused := pkgerrors.New(pkgerrors.CodeValidation, "orders row rejected")
	gw := &scriptedGateway{failFor: map[string]error{bad1.TxRef: refused, bad2.TxRef: refused}}

	job, err := NewResyncJob(ResyncJobParams{Ledger: ledger, Gateway: gw, BatchSize: 2})
	require.NoError(t, err)

	report, err := job.Sync(context.Background())
	require.Error(t, err)
	assert.Equal(t, Report{Attempted: 2, Rejected: 2}, report)
	assert.Equal(t, enums.SyncStatusRejected, syncOf(t, ledger, bad1.TxRef))
	assert.Equal(t, enums.SyncStatusRejected, syncOf(t, ledger, bad2.TxRef))

	report, err = job.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Attempted: 1, Synced: 1}, report)
	assert.Equal(t, enums.SyncStatusOK, syncOf(t, ledger, fresh.TxRef))
	assert.Len(t, gw.calls, 3)

	pending, err := ledger.Pending(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestResyncOfflineLeavesStatuses(t *testing.T) {
	queued := ledgerOrder(1, enums.SyncStatusQueued)
	ledger := seededLedger(t, queued)

	job, err := NewResyncJob(ResyncJobParams{Ledger: ledger})
	require.NoError(t, err)
	report, err := job.Sync(context.Background())

	require.NoError(t, err)
	assert.Zero(t, report.Attempted)
	assert.Equal(t, enums.SyncStatusQueued, syncOf(t, ledger, queued.TxRef))
}

func TestResyncHonoursBatchSize(t *testing.T) {
	ledger := seededLedger(t,
		ledgerOrder(1, enums.SyncStatusQueued),
		ledgerOrder(2, enums.SyncStatusQueued),
		ledgerOrder(3, enums.SyncStatusQueued),
	)
	gw := &scriptedGateway{}
	job, err := NewResyncJob(ResyncJobParams{Ledger: ledger, Gateway: gw, BatchSize: 2})
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, gw.calls, 2)

	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, gw.calls, 3)
}

func TestResyncRoutesServiceOrders(t *testing.T) {
	svc := ledgerOrder(1, enums.SyncStatusFailed)
	svc.DeliveryMethod = enums.DeliveryMethodService
	svc.Meta = map[string]string{orders.MetaServiceType: "Leak Detection"}
	ledger := seededLedger(t, svc)
	gw := &scriptedGateway{}

	job, err := NewResyncJob(ResyncJobParams{Ledger: ledger, Gateway: gw})
	require.NoError(t, err)
	_, err = job.Sync(context.Background())
	require.NoError(t, err)

	require.Len(t, gw.calls, 1)
	assert.Equal(t, gateway.TableServiceRequests, gw.calls[0].table)
}

func TestNewResyncJobRequiresLedger(t *testing.T) {
	_, err := NewResyncJob(ResyncJobParams{})
	assert.Error(t, err)
}

func TestResyncJobName(t *testing.T) {
	job, err := NewResyncJob(ResyncJobParams{Ledger: seededLedger(t)})
	require.NoError(t, err)
	assert.Equal(t, "order-resync", job.Name())
}
