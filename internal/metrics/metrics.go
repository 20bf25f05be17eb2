package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graphboard_events_enqueued_total",
		Help: "Total number of events placed on a session shard queue.",
	})

	EventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphboard_events_processed_total",
		Help: "Total number of events applied to a session, labelled by event type.",
	}, []string{"type"})

	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graphboard_events_dropped_total",
		Help: "Total number of events rejected due to a full queue.",
	})

	VerticesAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graphboard_vertices_added_total",
		Help: "Total number of vertices placed across all sessions.",
	})

	EdgesAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graphboard_edges_added_total",
		Help: "Total number of edges created across all sessions.",
	})

	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "graphboard_sessions_active",
		Help: "Number of live drawing sessions.",
	})

	LiveSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "graphboard_live_subscribers",
		Help: "Number of connected WebSocket viewers.",
	})

	EventProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "graphboard_event_processing_duration_ms",
		Help:    "End-to-end event processing latency in milliseconds.",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 250, 1000},
	})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "graphboard_queue_utilization_ratio",
		Help: "Current utilization of the fullest shard queue (0–1).",
	})
)
