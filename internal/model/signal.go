package model

import "time"

// Signal values produced by the SMA crossover rule.
const (
	SignalLong  = 1.0
	SignalShort = -1.0
	SignalFlat  = 0.0
)

// Crossover marks a bar where the signal changed.
type Crossover struct {
	Date     time.Time `json:"date"`
	Signal   float64   `json:"signal"`
	Position float64   `json:"position"` // +2 bullish cross, -2 bearish cross, ±1 first signal
	Close    float64   `json:"close"`
}

// Direction returns a human label for the crossover.
func (c Crossover) Direction() string {
	switch {
	case c.Position > 0:
		return "BUY"
	case c.Position < 0:
		return "SELL"
	default:
		return "HOLD"
	}
}
