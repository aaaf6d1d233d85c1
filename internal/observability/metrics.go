package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prism",
		Name:      "uploads_total",
		Help:      "Total number of accepted photo uploads",
	}, []string{"album"})

	DuplicatesDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prism",
		Name:      "duplicates_detected_total",
		Help:      "Total number of duplicate uploads detected, by matching strategy",
	}, []string{"strategy"})

	FaceSearchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "prism",
		Name:      "face_searches_total",
		Help:      "Total number of face similarity searches",
	})

	FaceSearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "prism",
		Name:      "face_search_duration_seconds",
		Help:      "End-to-end duration of face similarity searches",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})

	ExtractionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "prism",
		Name:      "extraction_duration_seconds",
		Help:      "Duration of external embedding extraction calls",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})

	PhotosProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prism",
		Name:      "photos_processed_total",
		Help:      "Total number of photos processed by ingest workers, by terminal status",
	}, []string{"status"})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "prism",
		Name:      "queue_depth",
		Help:      "Number of pending ingest tasks in queue",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "prism",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "prism",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)
