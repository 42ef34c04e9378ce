package strategy

import (
	"math"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
)

// GenerateSignals adds Signal (+1 while SMA_short is above SMA_long, -1
// otherwise, 0 during warm-up) and Position, the bar-to-bar change of Signal.
func (s *TradingStrategy) GenerateSignals(f *model.Frame) (*model.Frame, error) {
	short, err := f.Column(ColSMAShort)
	if err != nil {
		return nil, err
	}
	long, err := f.Column(ColSMALong)
	if err != nil {
		return nil, err
	}

	n := f.Len()
	signal := make([]float64, n)
	position := make([]float64, n)
	for i := 0; i < n; i++ {
		switch {
		case math.IsNaN(short[i]) || math.IsNaN(long[i]):
			signal[i] = model.SignalFlat
		case short[i] > long[i]:
			signal[i] = model.SignalLong
		default:
			signal[i] = model.SignalShort
		}
		if i == 0 {
			position[i] = math.NaN()
			continue
		}
		position[i] = signal[i] - signal[i-1]
	}

	out := f.Copy()
	if err := out.Set(ColSignal, signal); err != nil {
		return nil, err
	}
	if err := out.Set(ColPosition, position); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.signals = out.Copy()
	s.mu.Unlock()
	return out, nil
}

// Crossovers lists the bars where the signal changed.
func Crossovers(f *model.Frame) []model.Crossover {
	if !f.Has(ColPosition) {
		return nil
	}
	var out []model.Crossover
	for i := 1; i < f.Len(); i++ {
		pos := f.Value(ColPosition, i)
		if math.IsNaN(pos) || pos == 0 {
			continue
		}
		out = append(out, model.Crossover{
			Date:     f.Dates[i],
			Signal:   f.Value(ColSignal, i),
			Position: pos,
			Close:    f.Value(model.ColClose, i),
		})
	}
	return out
}
