package recorder

import (
	"github.com/google/uuid"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *model.Results, _ []model.Crossover) (string, error) {
	return uuid.NewString(), nil
}
func (n *NoopRecorder) LatestRun(_ string) (*Run, error)       { return nil, ErrNoRuns }
func (n *NoopRecorder) ListRuns(_ string, _ int) ([]Run, error) { return nil, nil }
func (n *NoopRecorder) Close() error                            { return nil }
