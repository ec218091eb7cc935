// Package metrics exports the service's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts handled HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeflux_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"endpoint", "method", "status"},
	)

	// RequestDuration observes HTTP request latency.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "homeflux_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"endpoint", "method"},
	)

	// EventsIngested counts state-change records applied from the ingest
	// stream.
	EventsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "homeflux_events_ingested_total",
			Help: "Total number of device state-change records applied",
		},
	)

	// ScenesRecommended counts emitted scene recommendations.
	ScenesRecommended = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "homeflux_scenes_recommended_total",
			Help: "Total number of scene recommendations emitted",
		},
	)

	// DevicesObserved is the roster size seen by the last metrics refresh.
	DevicesObserved = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "homeflux_devices_observed",
			Help: "Number of devices covered by the last analytics refresh",
		},
	)

	// HighConsumptionDevices is the number of currently flagged devices.
	HighConsumptionDevices = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "homeflux_high_consumption_devices",
			Help: "Number of devices flagged as high consumption",
		},
	)

	// TotalConsumptionKWh is the population-wide consumption of the last
	// refresh.
	TotalConsumptionKWh = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "homeflux_total_consumption_kwh",
			Help: "Total consumption across all devices in kWh",
		},
	)

	// CacheHits counts response cache hits.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "homeflux_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	// CacheMisses counts response cache misses.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "homeflux_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)
)
