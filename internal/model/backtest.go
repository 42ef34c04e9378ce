package model

import "time"

// Results is the summary of one backtest run.
type Results struct {
	Symbol              string    `json:"symbol"`
	Strategy            string    `json:"strategy"`
	ShortWindow         int       `json:"short_window"`
	LongWindow          int       `json:"long_window"`
	InitialCapital      float64   `json:"initial_capital"`
	Bars                int       `json:"bars"`
	StartDate           time.Time `json:"start_date"`
	EndDate             time.Time `json:"end_date"`
	TotalReturn         float64   `json:"total_return"`
	AnnualReturn        float64   `json:"annual_return"`
	AnnualVolatility    float64   `json:"annual_volatility"`
	SharpeRatio         float64   `json:"sharpe_ratio"`
	MaxDrawdown         float64   `json:"max_drawdown"`
	FinalPortfolioValue float64   `json:"final_portfolio_value"`
}

// Performance exposes the portfolio path of the last backtest.
type Performance struct {
	PortfolioValues []float64
	FinalValue      float64
}
