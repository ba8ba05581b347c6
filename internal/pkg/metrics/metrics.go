// Package metrics holds the process-wide Prometheus instruments. They are
// registered on the default registry and exposed via /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "eshop",
		Subsystem: "orders",
		Name:      "placed_total",
		Help:      "Orders that resulted in a shipment request.",
	})

	OrdersFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eshop",
		Subsystem: "orders",
		Name:      "failed_total",
		Help:      "Orders rejected before a shipment was requested.",
	}, []string{"reason"})

	ShipmentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "eshop",
		Subsystem: "shipping",
		Name:      "created_total",
		Help:      "Shipment records created.",
	})

	StatusChecks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "eshop",
		Subsystem: "shipping",
		Name:      "status_checks_total",
		Help:      "Shipment status lookups.",
	})
)
