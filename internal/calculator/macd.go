package calculator

import "fmt"

// MACDResult holds the MACD line components.
type MACDResult struct {
	FastEMA   []float64
	SlowEMA   []float64
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes the moving average convergence divergence of values.
func MACD(values []float64, fast, slow, signal int) (*MACDResult, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return nil, ErrInvalidPeriod
	}
	if fast >= slow {
		return nil, fmt.Errorf("macd: fast period %d must be below slow period %d", fast, slow)
	}
	emaFast, err := EMA(values, fast)
	if err != nil {
		return nil, err
	}
	emaSlow, err := EMA(values, slow)
	if err != nil {
		return nil, err
	}
	line := make([]float64, len(values))
	for i := range values {
		line[i] = emaFast[i] - emaSlow[i]
	}
	sig, err := EMA(line, signal)
	if err != nil {
		return nil, err
	}
	hist := make([]float64, len(values))
	for i := range values {
		hist[i] = line[i] - sig[i]
	}
	return &MACDResult{FastEMA: emaFast, SlowEMA: emaSlow, MACD: line, Signal: sig, Histogram: hist}, nil
}
