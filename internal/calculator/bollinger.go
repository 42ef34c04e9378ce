package calculator

// BollingerBands holds the middle band and the bands k standard deviations away.
type BollingerBands struct {
	Middle []float64
	Upper  []float64
	Lower  []float64
}

// Bollinger computes Bollinger Bands over period with a sample standard deviation.
func Bollinger(values []float64, period int, k float64) (*BollingerBands, error) {
	middle, err := SMA(values, period)
	if err != nil {
		return nil, err
	}
	std, err := RollingStd(values, period)
	if err != nil {
		return nil, err
	}
	upper := make([]float64, len(values))
	lower := make([]float64, len(values))
	for i := range values {
		upper[i] = middle[i] + std[i]*k
		lower[i] = middle[i] - std[i]*k
	}
	return &BollingerBands{Middle: middle, Upper: upper, Lower: lower}, nil
}
