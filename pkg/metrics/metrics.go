package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harambee/studentliving/internal/common/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the HTTP and lifecycle collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry    *prometheus.Registry
	httpReqCnt  *prometheus.CounterVec
	httpDur     *prometheus.HistogramVec
	httpInfl    *prometheus.GaugeVec
	transitions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	notifyCnt   *prometheus.CounterVec
	notifyDur   *prometheus.HistogramVec
	documentCnt *prometheus.CounterVec
}

func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	buckets := cfg.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry:   r,
		httpReqCnt: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "route", "status"}),
		httpDur:    prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds", Buckets: buckets}, []string{"method", "route", "status"}),
		httpInfl:   prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: "http_requests_inflight"}, []string{"route"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "lifecycle_transitions_total",
			Help: "Committed state transitions per entity",
		}, []string{"entity", "from", "to"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "lifecycle_rejections_total",
			Help: "Lifecycle operations refused, by entity and error kind",
		}, []string{"entity", "kind"}),
		notifyCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "notification_deliveries_total",
		}, []string{"channel", "result"}),
		notifyDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Name: "notification_dispatch_duration_seconds", Buckets: buckets,
		}, []string{"channel"}),
		documentCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "documents_rendered_total",
		}, []string{"kind", "result"}),
	}
	r.MustRegister(m.httpReqCnt, m.httpDur, m.httpInfl, m.transitions, m.rejections, m.notifyCnt, m.notifyDur, m.documentCnt)
	return m
}

// Transition counts a committed state change
func (m *Metrics) Transition(entity, from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(entity, from, to).Inc()
}

// Rejected counts a refused operation
func (m *Metrics) Rejected(entity, kind string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(entity, kind).Inc()
}

// Delivery records a single channel delivery attempt
func (m *Metrics) Delivery(channel string, since time.Time, err error) {
	if m == nil {
		return
	}
	m.notifyCnt.WithLabelValues(channel, result(err)).Inc()
	m.notifyDur.WithLabelValues(channel).Observe(time.Since(since).Seconds())
}

// Document records a render attempt
func (m *Metrics) Document(kind string, err error) {
	if m == nil {
		return
	}
	m.documentCnt.WithLabelValues(kind, result(err)).Inc()
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and custom collectors
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
