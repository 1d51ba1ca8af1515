// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionsTotal counts committed ledger movements by type (in|out).
	TransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inventory",
		Name:      "transactions_total",
		Help:      "Committed stock transactions by type.",
	}, []string{"type"})

	// TransactionsRejectedTotal counts ApplyTransaction failures by reason.
	TransactionsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inventory",
		Name:      "transactions_rejected_total",
		Help:      "Rejected stock transactions by reason.",
	}, []string{"reason"})

	// StockClampedTotal counts outbound movements that exceeded available stock.
	StockClampedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inventory",
		Name:      "stock_clamped_total",
		Help:      "Outbound transactions whose quantity exceeded stock and were clamped at zero.",
	})

	// LowStockEventsTotal counts low-stock events raised by the ledger.
	LowStockEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inventory",
		Name:      "low_stock_events_total",
		Help:      "Low-stock events raised by outbound transactions.",
	})

	// NotificationsTotal counts notification attempts by channel and outcome.
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inventory",
		Name:      "notifications_total",
		Help:      "Low-stock notification attempts by channel and result.",
	}, []string{"channel", "result"})
)
