package recorder

import (
	"errors"
	"time"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
)

// ErrNoRuns is returned when no backtest run exists for a symbol.
var ErrNoRuns = errors.New("no recorded runs")

// Run is one stored backtest result with the crossovers it produced.
type Run struct {
	ID         string    `json:"id"`
	RecordedAt time.Time `json:"recorded_at"`
	model.Results
	Crossovers []model.Crossover `json:"crossovers,omitempty"`
}

// Recorder persists backtest history for later analysis.
type Recorder interface {
	RecordRun(res *model.Results, crossovers []model.Crossover) (string, error)
	LatestRun(symbol string) (*Run, error)
	ListRuns(symbol string, limit int) ([]Run, error)
	Close() error
}
