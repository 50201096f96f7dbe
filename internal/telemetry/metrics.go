package telemetry

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"versiond/internal/logging"
	"versiond/transform"
)

// Metrics holds the collectors versiond exports. It implements
// versioning.Observer.
type Metrics struct {
	reg *prometheus.Registry

	resolves      *prometheus.CounterVec
	resolveErrors *prometheus.CounterVec
	chainSteps    *prometheus.HistogramVec
	chainDuration *prometheus.HistogramVec
	chainErrors   *prometheus.CounterVec
	requests      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "versiond", Name: "resolver_calls_total",
			Help: "Chain lookups by family and direction.",
		}, []string{"family", "reverse"}),
		resolveErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "versiond", Name: "resolver_errors_total",
			Help: "Failed chain lookups.",
		}, []string{"family"}),
		chainSteps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "versiond", Name: "chain_steps",
			Help:    "Steps applied per chain.",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
		}, []string{"family", "direction"}),
		chainDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "versiond", Name: "chain_duration_seconds",
			Help:    "Time spent applying a chain.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		}, []string{"family", "direction"}),
		chainErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "versiond", Name: "chain_errors_total",
			Help: "Chains aborted by a failing step.",
		}, []string{"family", "direction", "index"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "versiond", Name: "http_requests_total",
			Help: "HTTP requests by resource, method and status.",
		}, []string{"resource", "method", "code"}),
	}
	m.reg.MustRegister(
		m.resolves, m.resolveErrors, m.chainSteps, m.chainDuration, m.chainErrors, m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// ObserveChain records one Forward or Backward run.
func (m *Metrics) ObserveChain(family string, dir transform.Direction, steps int, took time.Duration, err error) {
	d := dir.String()
	m.chainSteps.WithLabelValues(family, d).Observe(float64(steps))
	m.chainDuration.WithLabelValues(family, d).Observe(took.Seconds())
	if err == nil {
		return
	}
	index := "unknown"
	var se *transform.StepError
	if errors.As(err, &se) {
		index = fmt.Sprintf("%04d", se.Index)
	}
	m.chainErrors.WithLabelValues(family, d, index).Inc()
}

// ObserveRequest counts one HTTP request.
func (m *Metrics) ObserveRequest(resource, method string, code int) {
	m.requests.WithLabelValues(resource, method, strconv.Itoa(code)).Inc()
}

// InstrumentResolver counts calls and failures of next.
func (m *Metrics) InstrumentResolver(next transform.Resolver) transform.Resolver {
	return transform.ResolverFunc(func(locator string, base int, reverse bool) ([]transform.Step, error) {
		m.resolves.WithLabelValues(locator, strconv.FormatBool(reverse)).Inc()
		steps, err := next.Resolve(locator, base, reverse)
		if err != nil {
			m.resolveErrors.WithLabelValues(locator).Inc()
		}
		return steps, err
	})
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Expose serves /metrics on port in the background. The returned server is
// shut down by the caller.
func Expose(port int, m *Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.L().Error("telemetry: metrics server stopped", "port", port, "err", err)
		}
	}()
	return srv
}
