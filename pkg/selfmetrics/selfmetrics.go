// Package selfmetrics exposes the agent's own health as Prometheus gauges
// and counters, grounded on core/monitor/LogtailMetric.{h,cpp}'s
// snapshotable metric record list.
package selfmetrics

import "github.com/prometheus/client_golang/prometheus"

// Registry holds every self-observability metric the agent exports.
type Registry struct {
	EventsIn      *prometheus.CounterVec
	BytesIn       *prometheus.CounterVec
	FlushCount    *prometheus.CounterVec
	SendErrors    *prometheus.CounterVec
	QueueSize     *prometheus.GaugeVec
	SendLatencyMs *prometheus.HistogramVec
}

// NewRegistry constructs and registers every gauge/counter against reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		EventsIn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loongcollector_events_in_total",
			Help: "Events accepted into a pipeline, by pipeline name.",
		}, []string{"pipeline"}),
		BytesIn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loongcollector_bytes_in_total",
			Help: "Raw bytes accepted into a pipeline, by pipeline name.",
		}, []string{"pipeline"}),
		FlushCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loongcollector_flush_total",
			Help: "Batches flushed, by pipeline and trigger (size/count/time).",
		}, []string{"pipeline", "trigger"}),
		SendErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loongcollector_send_errors_total",
			Help: "Transport failures, by destination.",
		}, []string{"destination"}),
		QueueSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "loongcollector_sender_queue_size",
			Help: "Current sender queue depth, by destination.",
		}, []string{"destination"}),
		SendLatencyMs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "loongcollector_send_latency_ms",
			Help:    "Transport latency in milliseconds, by destination.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 14),
		}, []string{"destination"}),
	}
	reg.MustRegister(r.EventsIn, r.BytesIn, r.FlushCount, r.SendErrors, r.QueueSize, r.SendLatencyMs)
	return r
}
