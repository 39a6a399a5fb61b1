package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/naijagasonline/ngo-storefront/internal/orders"
	"github.com/naijagasonline/ngo-storefront/pkg/enums"
	"github.com/naijagasonline/ngo-storefront/pkg/gateway"
	"github.com/naijagasonline/ngo-storefront/pkg/logger"
	"github.com/naijagasonline/ngo-storefront/pkg/metrics"
	"go.uber.org/multierr"
)

const (
	ResyncJobName = "order-resync"

	defaultResyncBatch   = 20
	defaultResyncTimeout = 10 * time.Second
)

type pendingLedger interface {
	Pending(ctx context.Context, limit int) ([]orders.LocalOrder, error)
	UpdateSync(ctx context.Context, txRef string, sync enums.SyncStatus) error
}

// ResyncJobParams configure the order resync job.
type ResyncJobParams struct {
	Ledger    pendingLedger
	Gateway   gateway.Gateway
	Metrics   *metrics.OrderMetrics
	Logger    *logger.Logger
	BatchSize int
	Timeout   time.Duration
}

// ResyncJob retries the remote copy of local orders whose sync status is
// queued or failed. The remote insert is idempotent on tx_ref, so a row
// that did land before a timeout is not duplicated.
type ResyncJob struct {
	ledger  pendingLedger
	gw      gateway.Gateway
	metrics *metrics.OrderMetrics
	logg    *logger.Logger
	batch   int
	timeout time.Duration
}

// Report summarizes one resync pass.
type Report struct {
	Attempted int `json:"attempted"`
	Synced    int `json:"synced"`
	Failed    int `json:"failed"`
	Rejected  int `json:"rejected"`
}

func NewResyncJob(params ResyncJobParams) (*ResyncJob, error) {
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger required")
	}
	gw := params.Gateway
	if gw == nil {
		gw = gateway.Offline{}
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultResyncBatch
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = defaultResyncTimeout
	}
	return &ResyncJob{
		ledger:  params.Ledger,
		gw:      gw,
		metrics: params.Metrics,
		logg:    logg,
		batch:   batch,
		timeout: timeout,
	}, nil
}

func (j *ResyncJob) Name() string {
	return ResyncJobName
}

func (j *ResyncJob) Run(ctx context.Context) error {
	report, err := j.Sync(ctx)
	if report.Attempted > 0 {
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"attempted": report.Attempted,
			"synced":    report.Synced,
			"failed":    report.Failed,
			"rejected":  report.Rejected,
		})
		j.logg.Info(logCtx, "order resync pass finished")
	}
	return err
}

// Sync pushes one batch of pending orders, oldest first. An offline
// gateway ends the pass without touching sync statuses.
func (j *ResyncJob) Sync(ctx context.Context) (Report, error) {
	var report Report
	pending, err := j.ledger.Pending(ctx, j.batch)
	if err != nil {
		return report, fmt.Errorf("load pending orders: %w", err)
	}

	var errs error
	for _, order := range pending {
		if ctx.Err() != nil {
			return report, multierr.Append(errs, ctx.Err())
		}
		orderCtx := j.logg.WithTxRef(ctx, order.TxRef)

		table, row, err := orders.RemoteRow(order)
		if err != nil {
			report.Attempted++
			errs = multierr.Append(errs, j.fail(orderCtx, &report, order.TxRef, err))
			continue
		}

		insertCtx, cancel := context.WithTimeout(orderCtx, j.timeout)
		start := time.Now()
		err = j.gw.InsertRow(insertCtx, table, row)
		cancel()
		if errors.Is(err, gateway.ErrOffline) {
			j.logg.Debug(ctx, "gateway offline; resync skipped")
			return report, errs
		}
		report.Attempted++
		j.metrics.ObserveSync(table, err == nil, time.Since(start))

		if err != nil {
			j.logg.WarnErr(orderCtx, "order resync failed", err)
			errs = multierr.Append(errs, j.fail(orderCtx, &report, order.TxRef, err))
			continue
		}
		report.Synced++
		errs = multierr.Append(errs, j.mark(orderCtx, order.TxRef, enums.SyncStatusOK))
	}
	return report, errs
}

// fail records a failed attempt. Rejected rows leave the pending queue so
// they cannot starve newer orders.
func (j *ResyncJob) fail(ctx context.Context, report *Report, txRef string, cause error) error {
	status := orders.SyncOutcome(cause)
	if status == enums.SyncStatusRejected {
		report.Rejected++
	} else {
		report.Failed++
	}
	return multierr.Append(fmt.Errorf("%s: %w", txRef, cause), j.mark(ctx, txRef, status))
}

func (j *ResyncJob) mark(ctx context.Context, txRef string, status enums.SyncStatus) error {
	if err := j.ledger.UpdateSync(ctx, txRef, status); err != nil {
		return fmt.Errorf("record sync status for %s: %w", txRef, err)
	}
	return nil
}
