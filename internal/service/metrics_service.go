package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsSnapshot is a lightweight summary served next to the health check.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	StoreWrites              uint64    `json:"storeWrites"`
	StoreWriteFailures       uint64    `json:"storeWriteFailures"`
	AverageStoreWriteMs      float64   `json:"averageStoreWriteMs"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}

// MetricsService owns the Prometheus registry for HTTP traffic, store
// persistence and upload rejections.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	storeWrites     *prometheus.CounterVec
	storeLatency    *prometheus.HistogramVec
	collectionSize  *prometheus.GaugeVec
	imageRejected   *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
	storeWriteCount      uint64
	storeFailureCount    uint64
	storeDurationTotal   uint64
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	storeWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "records_store_writes_total",
		Help: "Collection persistence attempts by outcome",
	}, []string{"collection", "result"})

	storeLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "records_store_write_seconds",
		Help:    "Latency of persisting a collection",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection"})

	collectionSize := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "records_collection_size",
		Help: "Number of records in each collection after the last successful write",
	}, []string{"collection"})

	imageRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "records_profile_image_rejected_total",
		Help: "Profile image uploads rejected by reason",
	}, []string{"reason"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, storeWrites, storeLatency, collectionSize, imageRejected, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		storeWrites:     storeWrites,
		storeLatency:    storeLatency,
		collectionSize:  collectionSize,
		imageRejected:   imageRejected,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveStoreWrite records one collection persistence attempt. The size gauge
// only moves on success since a failed write leaves the collection unchanged.
func (m *MetricsService) ObserveStoreWrite(collection string, size int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
		atomic.AddUint64(&m.storeFailureCount, 1)
	} else {
		m.collectionSize.WithLabelValues(collection).Set(float64(size))
	}
	m.storeWrites.WithLabelValues(collection, result).Inc()
	m.storeLatency.WithLabelValues(collection).Observe(duration.Seconds())
	atomic.AddUint64(&m.storeWriteCount, 1)
	atomic.AddUint64(&m.storeDurationTotal, uint64(duration.Nanoseconds()))
}

// SetCollectionSize seeds the size gauge, typically after loading.
func (m *MetricsService) SetCollectionSize(collection string, size int) {
	if m == nil {
		return
	}
	m.collectionSize.WithLabelValues(collection).Set(float64(size))
}

// RecordImageRejected counts a refused profile image upload.
func (m *MetricsService) RecordImageRejected(reason string) {
	if m == nil {
		return
	}
	m.imageRejected.WithLabelValues(reason).Inc()
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	writes := atomic.LoadUint64(&m.storeWriteCount)
	failures := atomic.LoadUint64(&m.storeFailureCount)
	writeDuration := atomic.LoadUint64(&m.storeDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}
	var avgWriteMs float64
	if writes > 0 {
		avgWriteMs = float64(writeDuration) / float64(writes) / float64(time.Millisecond)
	}

	return MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		StoreWrites:              writes,
		StoreWriteFailures:       failures,
		AverageStoreWriteMs:      avgWriteMs,
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
