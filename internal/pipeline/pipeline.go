// Package pipeline runs the load, indicator, backtest and persistence steps
// for one or many symbols.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/collector"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/dataset"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/metrics"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/recorder"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/strategy"
)

// Report is the outcome of processing one symbol.
type Report struct {
	Symbol     string            `json:"symbol"`
	Kind       model.Kind        `json:"kind"`
	RunID      string            `json:"run_id"`
	Snapshot   *model.Snapshot   `json:"snapshot"`
	Results    *model.Results    `json:"results"`
	Crossovers []model.Crossover `json:"crossovers"`
}

// SymbolError ties a processing failure to its symbol.
type SymbolError struct {
	Symbol string
	Kind   model.Kind
	Err    error
}

func (e *SymbolError) Error() string { return e.Err.Error() }
func (e *SymbolError) Unwrap() error { return e.Err }

// FailedSymbols lists the symbols of every SymbolError inside err.
func FailedSymbols(err error) []string {
	var out []string
	var walk func(error)
	walk = func(err error) {
		var se *SymbolError
		switch e := err.(type) {
		case nil:
		case interface{ Unwrap() []error }:
			for _, inner := range e.Unwrap() {
				walk(inner)
			}
		default:
			if errors.As(err, &se) {
				out = append(out, se.Symbol)
			}
		}
	}
	walk(err)
	return out
}

// Pipeline wires the collector, strategy, store and recorder together.
type Pipeline struct {
	collector    *collector.Collector
	store        *dataset.Store
	recorder     recorder.Recorder
	metrics      *metrics.Recorder
	strategyOpts []strategy.Option
	workers      int
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithRecorder stores every run in rec.
func WithRecorder(rec recorder.Recorder) Option {
	return func(p *Pipeline) { p.recorder = rec }
}

// WithMetrics reports progress to m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithWorkers bounds the number of symbols processed concurrently.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithStrategy sets the options used to build each symbol's strategy.
func WithStrategy(opts ...strategy.Option) Option {
	return func(p *Pipeline) { p.strategyOpts = append(p.strategyOpts, opts...) }
}

// New creates a Pipeline. Without options runs are not recorded and metrics
// are not reported.
func New(c *collector.Collector, store *dataset.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		collector: c,
		store:     store,
		recorder:  recorder.NewNoopRecorder(),
		workers:   4,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs the full analysis for a single symbol.
func (p *Pipeline) Process(ctx context.Context, kind model.Kind, symbol string) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	series, snap, err := p.collector.Collect(kind, symbol)
	if err != nil {
		p.fail(metrics.StageCollect)
		return nil, fmt.Errorf("collect %s: %w", symbol, err)
	}

	base := model.NewFrame(series)
	processed, err := AddIndicators(base)
	if err != nil {
		p.fail(metrics.StageAnalyze)
		return nil, fmt.Errorf("indicators %s: %w", series.Symbol, err)
	}
	if err := p.store.SaveFrame(processed); err != nil {
		p.fail(metrics.StageSave)
		return nil, fmt.Errorf("save indicators %s: %w", series.Symbol, err)
	}

	strat, err := strategy.New(p.strategyOpts...)
	if err != nil {
		p.fail(metrics.StageBacktest)
		return nil, fmt.Errorf("strategy: %w", err)
	}
	analyzed, err := strat.CalculateIndicators(base)
	if err != nil {
		p.fail(metrics.StageAnalyze)
		return nil, fmt.Errorf("strategy indicators %s: %w", series.Symbol, err)
	}
	signals, err := strat.GenerateSignals(analyzed)
	if err != nil {
		p.fail(metrics.StageBacktest)
		return nil, fmt.Errorf("signals %s: %w", series.Symbol, err)
	}
	res, err := strat.Backtest(signals)
	if err != nil {
		p.fail(metrics.StageBacktest)
		return nil, fmt.Errorf("backtest %s: %w", series.Symbol, err)
	}

	if err := p.store.SaveResults(res); err != nil {
		p.fail(metrics.StageSave)
		return nil, fmt.Errorf("save results %s: %w", series.Symbol, err)
	}
	if err := p.store.SavePortfolio(strat.BacktestFrame()); err != nil {
		p.fail(metrics.StageSave)
		return nil, fmt.Errorf("save portfolio %s: %w", series.Symbol, err)
	}

	crossovers := strategy.Crossovers(signals)
	runID, err := p.recorder.RecordRun(res, crossovers)
	if err != nil {
		// the files are already written, so a recorder failure only loses history
		p.fail(metrics.StageRecord)
		log.Error().Err(err).Str("symbol", series.Symbol).Msg("record run")
	}

	if p.metrics != nil {
		p.metrics.RecordBacktest(series.Symbol, res.SharpeRatio, res.TotalReturn)
		p.metrics.RecordProcessed(string(kind), time.Since(start))
	}
	log.Info().
		Str("symbol", series.Symbol).
		Int("bars", res.Bars).
		Float64("total_return", res.TotalReturn).
		Float64("sharpe", res.SharpeRatio).
		Dur("took", time.Since(start)).
		Msg("symbol processed")

	return &Report{
		Symbol:     series.Symbol,
		Kind:       kind,
		RunID:      runID,
		Snapshot:   snap,
		Results:    res,
		Crossovers: crossovers,
	}, nil
}

// RunAll processes symbols concurrently, bounded by the worker count. A
// failing symbol does not stop the others. Reports keep the input order and
// the returned error joins every failure.
func (p *Pipeline) RunAll(ctx context.Context, kind model.Kind, symbols []string) ([]*Report, error) {
	reports := make([]*Report, len(symbols))
	var (
		mu   sync.Mutex
		errs []error
	)

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			rep, err := p.Process(ctx, kind, symbol)
			if err != nil {
				log.Warn().Err(err).Str("symbol", symbol).Msg("symbol failed")
				mu.Lock()
				errs = append(errs, &SymbolError{Symbol: symbol, Kind: kind, Err: err})
				mu.Unlock()
				return nil
			}
			reports[i] = rep
			return nil
		})
	}
	_ = g.Wait()

	out := make([]*Report, 0, len(reports))
	for _, r := range reports {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, errors.Join(errs...)
}

// Refresh runs every raw stock and index symbol found in the store.
func (p *Pipeline) Refresh(ctx context.Context) ([]*Report, error) {
	var (
		all  []*Report
		errs []error
	)
	for _, kind := range []model.Kind{model.KindStock, model.KindIndex} {
		symbols, err := p.store.Layout.Symbols(kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("list %s symbols: %w", kind, err))
			continue
		}
		if len(symbols) == 0 {
			continue
		}
		reports, err := p.RunAll(ctx, kind, symbols)
		all = append(all, reports...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return all, errors.Join(errs...)
}

func (p *Pipeline) fail(stage string) {
	if p.metrics != nil {
		p.metrics.RecordError(stage)
	}
}
