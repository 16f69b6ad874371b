package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// internship workflows.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	lettersGenerated        prometheus.Counter
	notificationsDispatched prometheus.Counter
	remindersEmitted        prometheus.Counter
	documentVerifications   *prometheus.CounterVec
	emailsSent              *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
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

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	lettersGenerated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "letters_generated_total",
		Help: "Total recommendation letter documents generated",
	})

	notificationsDispatched := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifications_dispatched_total",
		Help: "Total in-app notifications inserted",
	})

	remindersEmitted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reminders_emitted_total",
		Help: "Total reminder notifications emitted by the sweep",
	})

	documentVerifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "document_verifications_total",
		Help: "Total document verification lookups",
	}, []string{"result"})

	emailsSent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "emails_sent_total",
		Help: "Total email delivery attempts",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheHits, cacheMisses,
		lettersGenerated, notificationsDispatched, remindersEmitted, documentVerifications, emailsSent, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:                registry,
		handler:                 handler,
		requestDuration:         requestDuration,
		requestTotal:            requestTotal,
		cacheLatency:            cacheLatency,
		cacheHits:               cacheHits,
		cacheMisses:             cacheMisses,
		lettersGenerated:        lettersGenerated,
		notificationsDispatched: notificationsDispatched,
		remindersEmitted:        remindersEmitted,
		documentVerifications:   documentVerifications,
		emailsSent:              emailsSent,
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// IncLetterGenerated counts a successfully generated letter document.
func (m *MetricsService) IncLetterGenerated() {
	if m == nil {
		return
	}
	m.lettersGenerated.Inc()
}

// IncNotificationDispatched counts an inserted notification row.
func (m *MetricsService) IncNotificationDispatched() {
	if m == nil {
		return
	}
	m.notificationsDispatched.Inc()
}

// IncReminderEmitted counts a reminder produced by the sweep.
func (m *MetricsService) IncReminderEmitted() {
	if m == nil {
		return
	}
	m.remindersEmitted.Inc()
}

// IncDocumentVerification counts a verification lookup by outcome.
func (m *MetricsService) IncDocumentVerification(valid bool) {
	if m == nil {
		return
	}
	result := "invalid"
	if valid {
		result = "valid"
	}
	m.documentVerifications.WithLabelValues(result).Inc()
}

// IncEmailSent counts an email delivery attempt by outcome.
func (m *MetricsService) IncEmailSent(ok bool) {
	if m == nil {
		return
	}
	result := "error"
	if ok {
		result = "ok"
	}
	m.emailsSent.WithLabelValues(result).Inc()
}
