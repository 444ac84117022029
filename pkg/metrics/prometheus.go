package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes pipeline metrics via Prometheus.
type Recorder struct {
	runsTotal    *prometheus.CounterVec
	quoteFetches *prometheus.CounterVec
	lastPrice    *prometheus.GaugeVec
	dayChangePct *prometheus.GaugeVec
	runCost      prometheus.Counter
	latency      *prometheus.HistogramVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketbrief_runs_total",
				Help: "Total number of analysis pipeline runs",
			},
			[]string{"result"},
		),
		quoteFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketbrief_quote_fetches_total",
				Help: "Per-symbol quote fetch attempts",
			},
			[]string{"symbol", "result"},
		),
		lastPrice: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "marketbrief_last_price",
				Help: "Last fetched price for a symbol",
			},
			[]string{"symbol"},
		),
		dayChangePct: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "marketbrief_day_change_percent",
				Help: "Last fetched day-over-day percent change for a symbol",
			},
			[]string{"symbol"},
		),
		runCost: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "marketbrief_analysis_cost_total",
				Help: "Cumulative billing cost reported by the analysis provider",
			},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketbrief_operation_duration_seconds",
				Help:    "Duration of pipeline operations in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"operation"},
		),
	}
}

// RecordRun records a completed pipeline run.
func (r *Recorder) RecordRun(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	r.runsTotal.WithLabelValues(result).Inc()
}

// RecordQuoteFetch records a per-symbol fetch attempt.
func (r *Recorder) RecordQuoteFetch(symbol string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	r.quoteFetches.WithLabelValues(symbol, result).Inc()
}

// RecordQuote records the last observed price and change for a symbol.
func (r *Recorder) RecordQuote(symbol string, price, changePercent float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
	r.dayChangePct.WithLabelValues(symbol).Set(changePercent)
}

// RecordCost adds the reported analysis cost for a run.
func (r *Recorder) RecordCost(cost float64) {
	if cost > 0 {
		r.runCost.Add(cost)
	}
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
