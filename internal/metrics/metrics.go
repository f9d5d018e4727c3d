// Package metrics exposes Prometheus collectors for inventory and upload
// activity.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"disk-backup/internal/domain"
)

const namespace = "disk_backup"

var (
	// inventoryTotal counts inventory enumerations by backend and outcome.
	inventoryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "total",
			Help:      "Total number of remote inventory enumerations",
		},
		[]string{"backend", "outcome"},
	)

	// inventoryCalls counts listing requests issued while enumerating.
	inventoryCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "calls_total",
			Help:      "Total number of remote listing calls",
		},
		[]string{"backend"},
	)

	// inventoryFiles tracks the size of the last inventory.
	inventoryFiles = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "files",
			Help:      "Number of files seen by the last remote inventory",
		},
		[]string{"backend"},
	)

	// uploadTotal counts upload attempts by the phase they finished in and status code.
	uploadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "total",
			Help:      "Total number of upload attempts",
		},
		[]string{"phase", "code"},
	)

	// uploadDuration tracks how long an upload attempt took end to end.
	uploadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "duration_seconds",
			Help:      "Duration of upload attempts in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		},
		[]string{"phase"},
	)
)

// Registry holds the collectors served on /metrics.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		inventoryTotal,
		inventoryCalls,
		inventoryFiles,
		uploadTotal,
		uploadDuration,
	)
}

// ObserveInventory records one enumeration.
func ObserveInventory(backend string, inv domain.Inventory) {
	outcome := "ok"
	if inv.Degraded {
		outcome = "degraded"
	}
	inventoryTotal.WithLabelValues(backend, outcome).Inc()
	inventoryCalls.WithLabelValues(backend).Add(float64(inv.Calls))
	inventoryFiles.WithLabelValues(backend).Set(float64(inv.Len()))
}

// ObserveUpload records one upload attempt.
func ObserveUpload(res domain.UploadResult) {
	phase := string(res.Phase)
	uploadTotal.WithLabelValues(phase, strconv.Itoa(res.StatusCode)).Inc()
	if !res.StartedAt.IsZero() && !res.FinishedAt.IsZero() {
		uploadDuration.WithLabelValues(phase).Observe(res.FinishedAt.Sub(res.StartedAt).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
