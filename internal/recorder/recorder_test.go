package recorder

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "nested", "runs.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func sampleResults(symbol string, total float64) *model.Results {
	return &model.Results{
		Symbol:              symbol,
		Strategy:            "sma_crossover",
		ShortWindow:         20,
		LongWindow:          50,
		InitialCapital:      100000,
		Bars:                250,
		StartDate:           time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC),
		EndDate:             time.Date(2023, 12, 29, 0, 0, 0, 0, time.UTC),
		TotalReturn:         total,
		AnnualReturn:        0.12,
		AnnualVolatility:    0.2,
		SharpeRatio:         0.6,
		MaxDrawdown:         -0.15,
		FinalPortfolioValue: 100000 * (1 + total),
	}
}

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	r := openTestRecorder(t)
	cross := []model.Crossover{
		{Date: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), Signal: 1, Position: 2, Close: 101.5},
		{Date: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), Signal: -1, Position: -2, Close: 98},
	}
	id, err := r.RecordRun(sampleResults("aapl", 0.1), cross)
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if id == "" {
		t.Fatal("expected run id")
	}

	run, err := r.LatestRun("AAPL")
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if run.ID != id || run.Symbol != "AAPL" || run.TotalReturn != 0.1 {
		t.Errorf("unexpected run %+v", run)
	}
	if !run.StartDate.Equal(time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start date = %v", run.StartDate)
	}
	if len(run.Crossovers) != 2 || run.Crossovers[0].Direction() != "BUY" || run.Crossovers[1].Close != 98 {
		t.Errorf("unexpected crossovers %+v", run.Crossovers)
	}
}

func TestSQLiteRecorder_History(t *testing.T) {
	r := openTestRecorder(t)
	for i := 0; i < 3; i++ {
		if _, err := r.RecordRun(sampleResults("MSFT", float64(i)), nil); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}
	if _, err := r.RecordRun(sampleResults("AAPL", 9), nil); err != nil {
		t.Fatal(err)
	}

	runs, err := r.ListRuns("msft", 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].TotalReturn != 2 || runs[1].TotalReturn != 1 {
		t.Errorf("expected newest first, got %v then %v", runs[0].TotalReturn, runs[1].TotalReturn)
	}

	all, err := r.ListRuns("MSFT", 0)
	if err != nil || len(all) != 3 {
		t.Errorf("expected default limit to return all 3 runs, got %d (%v)", len(all), err)
	}
}

func TestSQLiteRecorder_NoRuns(t *testing.T) {
	r := openTestRecorder(t)
	if _, err := r.LatestRun("NONE"); !errors.Is(err, ErrNoRuns) {
		t.Errorf("expected ErrNoRuns, got %v", err)
	}
	runs, err := r.ListRuns("NONE", 5)
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty history, got %v (%v)", runs, err)
	}
}

func TestNoopRecorder(t *testing.T) {
	var rec Recorder = NewNoopRecorder()
	id, err := rec.RecordRun(sampleResults("X", 0), nil)
	if err != nil || id == "" {
		t.Errorf("unexpected noop record result %q, %v", id, err)
	}
	if _, err := rec.LatestRun("X"); !errors.Is(err, ErrNoRuns) {
		t.Errorf("expected ErrNoRuns, got %v", err)
	}
}
