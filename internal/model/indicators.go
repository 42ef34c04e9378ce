package model

import "time"

// Snapshot holds the indicator values at the most recent bar of a series.
type Snapshot struct {
	Symbol       string    `json:"symbol"`
	Date         time.Time `json:"date"`
	CurrentPrice float64   `json:"current_price"`
	SMA20        float64   `json:"sma_20"`
	SMA50        float64   `json:"sma_50"`
	SMA200       float64   `json:"sma_200"`
	EMA12        float64   `json:"ema_12"`
	EMA26        float64   `json:"ema_26"`
	DailyRSI     float64   `json:"daily_rsi"`
	WeeklyRSI    float64   `json:"weekly_rsi"`
	MACD         float64   `json:"macd"`
	MACDSignal   float64   `json:"macd_signal"`
	MACDHist     float64   `json:"macd_hist"`
	BBUpper      float64   `json:"bb_upper"`
	BBMiddle     float64   `json:"bb_middle"`
	BBLower      float64   `json:"bb_lower"`
	High52w      float64   `json:"high_52w"`
	Low52w       float64   `json:"low_52w"`
	Position52w  float64   `json:"position_52w"` // 0.0 ~ 1.0
	High30d      float64   `json:"high_30d"`
	Low30d       float64   `json:"low_30d"`
}
