package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sync outcomes used as the "outcome" label.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// OrderMetrics tracks local order placement and remote mirroring.
type OrderMetrics struct {
	placed       *prometheus.CounterVec
	sync         *prometheus.CounterVec
	syncDuration *prometheus.HistogramVec
	rejected     *prometheus.CounterVec
}

func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	placed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Orders committed to the local ledger.",
	}, []string{"source"})
	sync := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_sync_total",
		Help:      "Remote submission attempts by table and outcome.",
	}, []string{"table", "outcome"})
	syncDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "remote_sync_duration_seconds",
		Help:      "Latency of remote submissions.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"table"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_rejections_total",
		Help:      "Checkout submissions rejected during validation.",
	}, []string{"reason"})
	reg.MustRegister(placed, sync, syncDuration, rejected)
	return &OrderMetrics{
		placed:       placed,
		sync:         sync,
		syncDuration: syncDuration,
		rejected:     rejected,
	}
}

// IncPlaced counts an order committed locally; source is checkout, refill or service.
func (m *OrderMetrics) IncPlaced(source string) {
	if m == nil || m.placed == nil {
		return
	}
	m.placed.WithLabelValues(normalizeLabel(source)).Inc()
}

// ObserveSync records one remote submission attempt.
func (m *OrderMetrics) ObserveSync(table string, ok bool, duration time.Duration) {
	if m == nil || m.sync == nil {
		return
	}
	outcome := OutcomeOK
	if !ok {
		outcome = OutcomeFailed
	}
	m.sync.WithLabelValues(normalizeLabel(table), outcome).Inc()
	m.syncDuration.WithLabelValues(normalizeLabel(table)).Observe(duration.Seconds())
}

func (m *OrderMetrics) IncRejected(reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}
