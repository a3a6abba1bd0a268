package palns

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exports the engine's own iteration counters to Prometheus.
// Problem-specific diagnostics stay out of the core per §1, but the
// search's own counters — iterations, acceptances, rejections, new
// bests, per-pair weights, the current best objective — are legitimate
// instrumentation of the core itself, not of whatever problem it is
// solving.
//
// Metrics carries its own prometheus.Registry rather than registering
// against the global default registry, so multiple Engines (as in
// tests) can each own independent metrics without a duplicate-
// registration panic.
type Metrics struct {
	registry *prometheus.Registry

	iterations    prometheus.Counter
	accepted      prometheus.Counter
	rejected      prometheus.Counter
	betterThan    prometheus.Counter
	newBests      prometheus.Counter
	temperature   prometheus.Gauge
	bestObjective prometheus.Gauge
	pairWeight    *prometheus.GaugeVec

	mu sync.Mutex
}

// NewMetrics creates a Metrics recorder with numPairs weight gauges
// pre-labeled "0".."numPairs-1".
func NewMetrics(numPairs int) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "palns_iterations_total",
			Help: "Total number of worker iterations completed.",
		}),
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "palns_classifications_accepted_total",
			Help: "Total number of iterations classified Accepted.",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "palns_classifications_rejected_total",
			Help: "Total number of iterations classified Rejected.",
		}),
		betterThan: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "palns_classifications_better_than_current_total",
			Help: "Total number of iterations classified BetterThanCurrent.",
		}),
		newBests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "palns_classifications_new_global_best_total",
			Help: "Total number of iterations classified NewGlobalBest.",
		}),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "palns_worker_temperature",
			Help: "Most recently observed per-worker annealing temperature.",
		}),
		bestObjective: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "palns_best_objective",
			Help: "Objective value of the current best solution.",
		}),
		pairWeight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "palns_pair_weight",
			Help: "Current weight of each destroy/repair pair, by pair index.",
		}, []string{"pair"}),
	}

	m.registry.MustRegister(
		m.iterations, m.accepted, m.rejected, m.betterThan, m.newBests,
		m.temperature, m.bestObjective, m.pairWeight,
	)
	for i := 0; i < numPairs; i++ {
		m.pairWeight.WithLabelValues(strconv.Itoa(i)).Set(0)
	}
	return m
}

// Handler returns the http.Handler that serves this Metrics' registry in
// Prometheus text format, suitable for mounting at "/metrics".
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ListenAndServe starts a dedicated HTTP server exposing only "/metrics"
// on addr, mirroring the teacher's StartServer helper.
func (m *Metrics) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return http.ListenAndServe(addr, mux)
}

func (m *Metrics) recordClassification(c Classification) {
	switch c {
	case Rejected:
		m.rejected.Inc()
	case Accepted:
		m.accepted.Inc()
	case BetterThanCurrent:
		m.betterThan.Inc()
	case NewGlobalBest:
		m.newBests.Inc()
	default:
		panic(fmt.Sprintf("palns: invalid classification tag %d", int(c)))
	}
}

func (m *Metrics) recordWeights(pairs []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, w := range pairs {
		m.pairWeight.WithLabelValues(strconv.Itoa(i)).Set(w)
	}
}

// observe is called by the worker loop at the end of every iteration. It
// is a no-op when the Engine was constructed without WithMetrics.
func (e *Engine) observe(c Classification, temperature float64) {
	if e.metrics == nil {
		return
	}
	e.metrics.iterations.Inc()
	e.metrics.recordClassification(c)
	e.metrics.temperature.Set(temperature)
	if best := e.best.get(); best != nil {
		e.metrics.bestObjective.Set(best.Objective())
	}
	w, _ := e.weights.snapshot()
	e.metrics.recordWeights(w)
}
