package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result constants for metric labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultAbsent  = "absent"
	ResultStale   = "stale"
)

// Recorder is the metrics surface used by services and middleware.
type Recorder interface {
	RecordTransition(from, to string)
	RecordProfileFetch(result string, d time.Duration)
	RecordProfileWrite(op, result string)
	RecordForcedSignOut(reason string)
	RecordListingOp(op, result string)
	RecordCacheFallback()
	RecordAnalytics(result string)
	RecordHTTPStatus(statusCode int)
}

// Collector records metrics in a Prometheus registry.
type Collector struct {
	transitions    *prometheus.CounterVec
	profileFetch   *prometheus.CounterVec
	fetchLatency   prometheus.Histogram
	profileWrite   *prometheus.CounterVec
	forcedSignOuts *prometheus.CounterVec
	listingOps     *prometheus.CounterVec
	cacheFallback  prometheus.Counter
	analytics      *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hillstay_session_transitions_total",
			Help: "Session role transitions applied by the controller.",
		}, []string{"from", "to"}),
		profileFetch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hillstay_profile_fetch_total",
			Help: "Profile document fetches by result.",
		}, []string{"result"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hillstay_profile_fetch_latency_seconds",
			Help:    "Profile document fetch latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		profileWrite: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hillstay_profile_write_total",
			Help: "Profile document writes by operation and result.",
		}, []string{"op", "result"}),
		forcedSignOuts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hillstay_forced_signouts_total",
			Help: "Sign-outs forced by the controller.",
		}, []string{"reason"}),
		listingOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hillstay_listing_ops_total",
			Help: "Owner listing operations by result.",
		}, []string{"op", "result"}),
		cacheFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hillstay_listing_cache_fallback_total",
			Help: "Listing reads served from the local cache after a remote failure.",
		}),
		analytics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hillstay_analytics_events_total",
			Help: "Analytics events by delivery result.",
		}, []string{"result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hillstay_http_status_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.transitions,
		c.profileFetch,
		c.fetchLatency,
		c.profileWrite,
		c.forcedSignOuts,
		c.listingOps,
		c.cacheFallback,
		c.analytics,
		c.httpStatus,
	)

	return c
}

// RecordTransition counts a role transition.
func (c *Collector) RecordTransition(from, to string) {
	c.transitions.WithLabelValues(labelOrNone(from), labelOrNone(to)).Inc()
}

// RecordProfileFetch counts a fetch and observes its latency.
func (c *Collector) RecordProfileFetch(result string, d time.Duration) {
	c.profileFetch.WithLabelValues(result).Inc()
	c.fetchLatency.Observe(d.Seconds())
}

// RecordProfileWrite counts a profile write.
func (c *Collector) RecordProfileWrite(op, result string) {
	c.profileWrite.WithLabelValues(op, result).Inc()
}

// RecordForcedSignOut counts a forced sign-out.
func (c *Collector) RecordForcedSignOut(reason string) {
	c.forcedSignOuts.WithLabelValues(reason).Inc()
}

// RecordListingOp counts a listing operation.
func (c *Collector) RecordListingOp(op, result string) {
	c.listingOps.WithLabelValues(op, result).Inc()
}

// RecordCacheFallback counts a stale listing read.
func (c *Collector) RecordCacheFallback() {
	c.cacheFallback.Inc()
}

// RecordAnalytics counts an analytics event outcome (delivered, failed, dropped).
func (c *Collector) RecordAnalytics(result string) {
	c.analytics.WithLabelValues(result).Inc()
}

// RecordHTTPStatus counts an HTTP response.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

func labelOrNone(v string) string {
	if v == "" {
		return "none"
	}
	return v
}

// Handler returns the Prometheus scrape handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards all metrics.
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) RecordTransition(string, string)          {}
func (Nop) RecordProfileFetch(string, time.Duration) {}
func (Nop) RecordProfileWrite(string, string)        {}
func (Nop) RecordForcedSignOut(string)               {}
func (Nop) RecordListingOp(string, string)           {}
func (Nop) RecordCacheFallback()                     {}
func (Nop) RecordAnalytics(string)                   {}
func (Nop) RecordHTTPStatus(int)                     {}
