// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
)

// Metrics groups HTTP and ledger collectors on a private registry, so several
// routers (as in tests) can coexist in one process.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ShiftsOpened  *prometheus.CounterVec
	ShiftsClosed  *prometheus.CounterVec
	CloseVariance *prometheus.GaugeVec
	LedgerWrites  *prometheus.CounterVec
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),
		ShiftsOpened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shifts_opened_total",
				Help: "Shift instances opened, by shift type",
			},
			[]string{"shift"},
		),
		ShiftsClosed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shifts_closed_total",
				Help: "Shift instances closed, by shift type",
			},
			[]string{"shift"},
		),
		CloseVariance: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "shift_close_variance",
				Help: "Cash variance (closing minus expected) of the last close, by shift type",
			},
			[]string{"shift"},
		),
		LedgerWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_writes_total",
				Help: "Ledger rows written, by transaction kind and operation",
			},
			[]string{"kind", "op"},
		),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ShiftsOpened,
		m.ShiftsClosed,
		m.CloseVariance,
		m.LedgerWrites,
	)
	return m
}

// ShiftOpened records an open. Safe on a nil receiver.
func (m *Metrics) ShiftOpened(shift string) {
	if m == nil {
		return
	}
	m.ShiftsOpened.WithLabelValues(shift).Inc()
}

// ShiftClosed records a close and its variance. Safe on a nil receiver.
func (m *Metrics) ShiftClosed(shift string, variance decimal.Decimal) {
	if m == nil {
		return
	}
	m.ShiftsClosed.WithLabelValues(shift).Inc()
	m.CloseVariance.WithLabelValues(shift).Set(variance.InexactFloat64())
}

// LedgerWrite records a create, update or delete of a ledger row. Safe on a nil receiver.
func (m *Metrics) LedgerWrite(kind, op string) {
	if m == nil {
		return
	}
	m.LedgerWrites.WithLabelValues(kind, op).Inc()
}
