package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the pipeline's Prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	parses       *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	ocrFallbacks *prometheus.CounterVec
	transactions prometheus.Histogram
}

// Parse outcomes.
const (
	outcomeOK          = "ok"
	outcomeUnreadable  = "unreadable"
	outcomeUnsupported = "unsupported"
)

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "statement_extractor",
			Name:      "parses_total",
			Help:      "Statements parsed, by issuer, extraction method and outcome.",
		}, []string{"issuer", "method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "statement_extractor",
			Name:      "stage_duration_seconds",
			Help:      "Time spent per pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
		ocrFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "statement_extractor",
			Name:      "ocr_fallbacks_total",
			Help:      "OCR attempts on documents without a usable text layer, by whether OCR was chosen.",
		}, []string{"chosen"}),
		transactions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "statement_extractor",
			Name:      "transactions_per_statement",
			Help:      "Transactions kept on each parsed statement.",
			Buckets:   prometheus.LinearBuckets(0, 1, 6),
		}),
	}
	reg.MustRegister(m.parses, m.duration, m.ocrFallbacks, m.transactions)
	return m
}

func (m *Metrics) observeStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func (m *Metrics) countParse(issuerName, method, outcome string) {
	if m == nil {
		return
	}
	m.parses.WithLabelValues(issuerName, method, outcome).Inc()
}

func (m *Metrics) countOCR(chosen bool) {
	if m == nil {
		return
	}
	label := "false"
	if chosen {
		label = "true"
	}
	m.ocrFallbacks.WithLabelValues(label).Inc()
}

func (m *Metrics) observeTransactions(n int) {
	if m == nil {
		return
	}
	m.transactions.Observe(float64(n))
}
