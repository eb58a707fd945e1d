package observability

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements every hook interface on top of a private registry.
// There is no HTTP endpoint; use [Prometheus.WriteTextfile] to dump the
// collected series at exit.
type Prometheus struct {
	registry *prometheus.Registry

	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	cacheLookups      *prometheus.CounterVec
	cacheBytes        *prometheus.CounterVec
	cacheErrors       *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	httpErrors        *prometheus.CounterVec
	retries           *prometheus.CounterVec
	retryDelay        prometheus.Histogram
	giveUps           prometheus.Counter
}

// NewPrometheus creates the collector with all series registered under the
// "tokenfolio" namespace.
func NewPrometheus() *Prometheus {
	const ns = "tokenfolio"
	p := &Prometheus{registry: prometheus.NewRegistry()}

	p.operations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "gateway", Name: "operations_total",
		Help: "Gateway operations by operation and result",
	}, []string{"op", "result"})
	p.operationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns, Subsystem: "gateway", Name: "operation_duration_seconds",
		Help:    "Wall time of gateway operations including retries",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 14), // 5ms to ~40s
	}, []string{"op"})
	p.cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "cache", Name: "lookups_total",
		Help: "Cache lookups by operation and outcome",
	}, []string{"op", "outcome"})
	p.cacheBytes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "cache", Name: "written_bytes_total",
		Help: "Bytes written to the cache",
	}, []string{"op"})
	p.cacheErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "cache", Name: "errors_total",
		Help: "Cache backend errors treated as misses",
	}, []string{"op"})
	p.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "http", Name: "responses_total",
		Help: "HTTP responses by path and status code",
	}, []string{"path", "code"})
	p.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns, Subsystem: "http", Name: "request_duration_seconds",
		Help:    "Latency of a single HTTP attempt",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})
	p.httpErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "http", Name: "errors_total",
		Help: "HTTP attempts that produced no response",
	}, []string{"path"})
	p.retries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "retry", Name: "attempts_total",
		Help: "Retries scheduled, by attempt number",
	}, []string{"attempt"})
	p.retryDelay = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: ns, Subsystem: "retry", Name: "delay_seconds",
		Help:    "Backoff delay before a retry",
		Buckets: []float64{0.5, 1, 2, 4, 8},
	})
	p.giveUps = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "retry", Name: "exhausted_total",
		Help: "Operations that failed after all retries",
	})

	p.registry.MustRegister(
		p.operations, p.operationDuration,
		p.cacheLookups, p.cacheBytes, p.cacheErrors,
		p.httpRequests, p.httpDuration, p.httpErrors,
		p.retries, p.retryDelay, p.giveUps,
	)
	return p
}

// Registry exposes the underlying registry, mainly for tests.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Install registers p as the global hooks for every category.
func (p *Prometheus) Install() {
	SetGatewayHooks(p)
	SetCacheHooks(p)
	SetHTTPHooks(p)
	SetRetryHooks(p)
}

// WriteTextfile writes the current series in the Prometheus text format,
// suitable for the node_exporter textfile collector.
func (p *Prometheus) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, p.registry)
}

func (p *Prometheus) OnOperationStart(context.Context, string) {}

func (p *Prometheus) OnOperationComplete(_ context.Context, op string, d time.Duration, err error) {
	p.operations.WithLabelValues(op, resultLabel(err)).Inc()
	p.operationDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (p *Prometheus) OnCacheHit(_ context.Context, op string) {
	p.cacheLookups.WithLabelValues(op, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, op string) {
	p.cacheLookups.WithLabelValues(op, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, op string, size int) {
	p.cacheBytes.WithLabelValues(op).Add(float64(size))
}

func (p *Prometheus) OnCacheError(_ context.Context, op string, _ error) {
	p.cacheErrors.WithLabelValues(op).Inc()
}

func (p *Prometheus) OnRequest(context.Context, string, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, _, _, path string, status int, d time.Duration) {
	p.httpRequests.WithLabelValues(path, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(path).Observe(d.Seconds())
}

func (p *Prometheus) OnError(_ context.Context, _, _, path string, _ error) {
	p.httpErrors.WithLabelValues(path).Inc()
}

func (p *Prometheus) OnRetry(_ context.Context, attempt int, delay time.Duration, _ error) {
	p.retries.WithLabelValues(strconv.Itoa(attempt)).Inc()
	p.retryDelay.Observe(delay.Seconds())
}

func (p *Prometheus) OnGiveUp(context.Context, int, error) {
	p.giveUps.Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
