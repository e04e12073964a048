package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Low-cardinality pipeline metrics only. Camera ids are bounded by the fixed
// registry, action kinds by the detection table.
var (
	EventsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_events_generated_total",
		Help: "Total detection events produced, by action kind",
	}, []string{"action"})

	SamplesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_crowd_samples_total",
		Help: "Total crowd samples produced",
	})

	StoreWrites = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_store_writes_total",
		Help: "Durable event writes attempted",
	})

	StoreDegraded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_store_degraded_total",
		Help: "Store operations that fell back to a degraded result",
	}, []string{"op"})

	BroadcastDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_broadcast_delivered_total",
		Help: "Messages delivered to subscriber channels, by kind",
	}, []string{"kind"})

	BroadcastDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_broadcast_dropped_total",
		Help: "Messages dropped, by reason (slow_subscriber, duplicate, nats)",
	}, []string{"reason"})

	SubscribersActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sentinel_subscribers_active",
		Help: "Currently connected broadcast subscribers",
	})

	CrowdBufferSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sentinel_crowd_buffer_size",
		Help: "Samples currently retained in the crowd buffer",
	})
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
