package collector

import (
	"fmt"
	"strings"
	"time"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
)

// Source loads the raw price history of a symbol.
type Source interface {
	LoadSeries(kind model.Kind, symbol string) (*model.Series, error)
}

// MockSource returns controllable fixed data for development and testing.
type MockSource struct {
	Price float64
	Count int
	Bars  []model.Bar
	Err   error
}

// LoadSeries returns Bars when set, otherwise Count generated bars around Price.
func (m *MockSource) LoadSeries(kind model.Kind, symbol string) (*model.Series, error) {
	if m.Err != nil {
		return nil, fmt.Errorf("load %s: %w", symbol, m.Err)
	}
	bars := m.Bars
	if bars == nil {
		count := m.Count
		if count == 0 {
			count = 300
		}
		bars = generateMockBars(m.Price, count)
	}
	out := make([]model.Bar, len(bars))
	copy(out, bars)
	return &model.Series{Symbol: strings.ToUpper(symbol), Kind: kind, Bars: out, LoadedAt: time.Now()}, nil
}

// generateMockBars produces a slow uptrend ending on a fixed date so output is
// deterministic.
func generateMockBars(basePrice float64, count int) []model.Bar {
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Date:     end.AddDate(0, 0, -(count - 1 - i)),
			Open:     p * 0.999,
			High:     p * 1.005,
			Low:      p * 0.995,
			Close:    p,
			Volume:   1000000,
			AdjClose: p,
		}
	}
	return bars
}
