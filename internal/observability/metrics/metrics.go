package metrics

import "github.com/prometheus/client_golang/prometheus"

// CollectionsMetrics exposes counters/histograms for the negotiation
// and collections flows. All methods are nil-safe so instrumentation
// can be left unwired in tests and local runs.
type CollectionsMetrics struct {
	turnsTotal      *prometheus.CounterVec
	promisesTotal   *prometheus.CounterVec
	enrichmentTotal *prometheus.CounterVec
	queueBuildTime  prometheus.Histogram
}

func NewCollectionsMetrics(reg prometheus.Registerer) *CollectionsMetrics {
	m := &CollectionsMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riverline",
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Total dialogue turns processed",
		}, []string{"channel", "state"}),
		promisesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riverline",
			Subsystem: "promises",
			Name:      "transitions_total",
			Help:      "Total promise-to-pay transitions",
		}, []string{"status"}),
		enrichmentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riverline",
			Subsystem: "conversation",
			Name:      "enrichment_jobs_total",
			Help:      "Total LLM enrichment jobs",
		}, []string{"status"}),
		queueBuildTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "riverline",
			Subsystem: "scoring",
			Name:      "queue_build_seconds",
			Help:      "Latency of priority queue builds",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.promisesTotal, m.enrichmentTotal, m.queueBuildTime)
	return m
}

func (m *CollectionsMetrics) ObserveTurn(channel, state string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(channel, state).Inc()
}

func (m *CollectionsMetrics) ObservePromise(status string) {
	if m == nil {
		return
	}
	m.promisesTotal.WithLabelValues(status).Inc()
}

func (m *CollectionsMetrics) ObserveEnrichment(status string) {
	if m == nil {
		return
	}
	m.enrichmentTotal.WithLabelValues(status).Inc()
}

func (m *CollectionsMetrics) ObserveQueueBuild(seconds float64) {
	if m == nil {
		return
	}
	m.queueBuildTime.Observe(seconds)
}
