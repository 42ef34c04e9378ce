// Package metrics exposes pipeline counters and gauges to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline stages used as error labels.
const (
	StageCollect  = "collect"
	StageAnalyze  = "analyze"
	StageBacktest = "backtest"
	StageSave     = "save"
	StageRecord   = "record"
)

// Recorder records pipeline metrics.
type Recorder struct {
	processed   *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	sharpe      *prometheus.GaugeVec
	totalReturn *prometheus.GaugeVec
}

// New registers the pipeline metrics against reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Recorder{
		processed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stock_analysis_symbols_processed_total",
				Help: "Total number of symbols processed by the pipeline",
			},
			[]string{"kind"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stock_analysis_errors_total",
				Help: "Total number of pipeline errors by stage",
			},
			[]string{"stage"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stock_analysis_process_duration_seconds",
				Help:    "Duration of a single symbol run in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		sharpe: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stock_analysis_last_sharpe_ratio",
				Help: "Sharpe ratio of the last backtest for a symbol",
			},
			[]string{"symbol"},
		),
		totalReturn: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stock_analysis_last_total_return",
				Help: "Total return of the last backtest for a symbol",
			},
			[]string{"symbol"},
		),
	}
}

// RecordProcessed records a successful symbol run and its duration.
func (r *Recorder) RecordProcessed(kind string, d time.Duration) {
	r.processed.WithLabelValues(kind).Inc()
	r.duration.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordError records a failure in the given stage.
func (r *Recorder) RecordError(stage string) {
	r.errorsTotal.WithLabelValues(stage).Inc()
}

// RecordBacktest records the headline numbers of the last backtest.
func (r *Recorder) RecordBacktest(symbol string, sharpe, totalReturn float64) {
	r.sharpe.WithLabelValues(symbol).Set(sharpe)
	r.totalReturn.WithLabelValues(symbol).Set(totalReturn)
}
