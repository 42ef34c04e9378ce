package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/notifier"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/pipeline"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/recorder"
)

// Refresher re-runs the analysis for every known symbol.
type Refresher interface {
	Refresh(ctx context.Context) ([]*pipeline.Report, error)
}

// Scheduler manages the cron refresh task and bot commands.
type Scheduler struct {
	Cron      *cron.Cron
	Pipeline  Refresher
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Ctx       context.Context
	running   atomic.Bool
	lastRunAt atomic.Int64
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, p Refresher, n notifier.Notifier, rec recorder.Recorder) *Scheduler {
	if n == nil {
		n = notifier.NoopNotifier{}
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Pipeline: p,
		Notifier: n,
		Recorder: rec,
		Ctx:      ctx,
	}
}

// RegisterAll registers the refresh task.
func (s *Scheduler) RegisterAll(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunNow executes the refresh task immediately. It reports false when a
// refresh is already in progress.
func (s *Scheduler) RunNow() bool {
	return s.refresh()
}

// LastRun returns when the last refresh finished, zero before the first.
func (s *Scheduler) LastRun() time.Time {
	ns := s.lastRunAt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

func (s *Scheduler) refreshTask() {
	s.refresh()
}

func (s *Scheduler) refresh() bool {
	if !s.running.CompareAndSwap(false, true) {
		log.Warn().Msg("refresh already running, skipping")
		return false
	}
	defer s.running.Store(false)

	log.Info().Msg("running refresh task")
	reports, err := s.Pipeline.Refresh(s.Ctx)
	failed := pipeline.FailedSymbols(err)
	if err != nil {
		log.Error().Err(err).Int("failed", len(failed)).Msg("refresh finished with errors")
	}
	now := time.Now()
	s.lastRunAt.Store(now.UnixNano())

	if len(reports) == 0 && len(failed) == 0 {
		log.Info().Msg("no symbols to refresh")
		return true
	}
	results := make([]*model.Results, len(reports))
	for i, r := range reports {
		results[i] = r.Results
	}
	s.trySend(notifier.FormatRunSummary(now, results, failed))
	return true
}

// Commands returns the bot commands served by the scheduler.
func (s *Scheduler) Commands() notifier.Commands {
	return notifier.Commands{
		"latest":  s.latestCommand,
		"history": s.historyCommand,
		"refresh": s.refreshCommand,
		"help": func([]string) string {
			return "Commands:\n• /latest SYMBOL\n• /history SYMBOL [N]\n• /refresh"
		},
	}
}

func (s *Scheduler) latestCommand(args []string) string {
	if len(args) == 0 {
		return "Usage: /latest SYMBOL"
	}
	run, err := s.Recorder.LatestRun(args[0])
	if errors.Is(err, recorder.ErrNoRuns) {
		return fmt.Sprintf("No backtest recorded for %s", strings.ToUpper(args[0]))
	}
	if err != nil {
		log.Error().Err(err).Str("symbol", args[0]).Msg("latest run lookup")
		return "Lookup failed, see logs"
	}
	return notifier.FormatBacktest(&run.Results, nil, run.Crossovers)
}

func (s *Scheduler) historyCommand(args []string) string {
	if len(args) == 0 {
		return "Usage: /history SYMBOL [N]"
	}
	limit := 5
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
			limit = n
		}
	}
	runs, err := s.Recorder.ListRuns(args[0], limit)
	if err != nil {
		log.Error().Err(err).Str("symbol", args[0]).Msg("run history lookup")
		return "Lookup failed, see logs"
	}
	if len(runs) == 0 {
		return fmt.Sprintf("No backtest recorded for %s", strings.ToUpper(args[0]))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>%s</b> last %d runs\n", strings.ToUpper(args[0]), len(runs)))
	for _, r := range runs {
		b.WriteString(fmt.Sprintf("%s  %+.2f%%  sharpe %.2f\n", r.RecordedAt.Format("2006-01-02 15:04"), r.TotalReturn*100, r.SharpeRatio))
	}
	return b.String()
}

func (s *Scheduler) refreshCommand([]string) string {
	if s.running.Load() {
		return "Refresh already running"
	}
	go s.refresh()
	return "Refresh started"
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.Notify(s.Ctx, text); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
