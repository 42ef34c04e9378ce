package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
)

const eps = 1e-9

func almostEqual(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) < eps
}

func assertSeries(t *testing.T, name string, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: expected %d values, got %d", name, len(want), len(got))
	}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Errorf("%s[%d]: expected %v, got %v", name, i, want[i], got[i])
		}
	}
}

var nan = math.NaN()

func TestSMA(t *testing.T) {
	got, err := SMA([]float64{1, 2, 3, 4, 5}, 3)
	if err != nil {
		t.Fatal(err)
	}
	assertSeries(t, "sma", got, []float64{nan, nan, 2, 3, 4})
}

func TestSMA_NaNInWindow(t *testing.T) {
	got, _ := SMA([]float64{1, nan, 3, 4, 5, 6}, 2)
	assertSeries(t, "sma", got, []float64{nan, nan, nan, 3.5, 4.5, 5.5})
}

func TestSMA_InvalidWindow(t *testing.T) {
	if _, err := SMA([]float64{1}, 0); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestCalculateSMA(t *testing.T) {
	v, err := CalculateSMA([]float64{1, 2, 3, 4}, 2)
	if err != nil || v != 3.5 {
		t.Fatalf("expected 3.5, got %v (%v)", v, err)
	}
	if _, err := CalculateSMA([]float64{1}, 2); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestEMA(t *testing.T) {
	got, _ := EMA([]float64{1, 2}, 3)
	assertSeries(t, "ema", got, []float64{1, 2.5 / 1.5})

	same, _ := EMA([]float64{4, 7, 1}, 1)
	assertSeries(t, "ema span 1", same, []float64{4, 7, 1})
}

func TestRSI_Monotonic(t *testing.T) {
	up := make([]float64, 20)
	for i := range up {
		up[i] = float64(i + 1)
	}
	got, _ := RSI(up, 14)
	for i := 0; i < 13; i++ {
		if !math.IsNaN(got[i]) {
			t.Errorf("rsi[%d]: expected NaN during warm-up, got %v", i, got[i])
		}
	}
	for i := 13; i < 20; i++ {
		if got[i] != 100 {
			t.Errorf("rsi[%d]: expected 100, got %v", i, got[i])
		}
	}
}

func TestRSI_FlatIsUndefined(t *testing.T) {
	got, _ := RSI([]float64{5, 5, 5, 5}, 2)
	for i, v := range got {
		if !math.IsNaN(v) {
			t.Errorf("rsi[%d]: expected NaN, got %v", i, v)
		}
	}
}

func TestRSI_Alternating(t *testing.T) {
	got, _ := RSI([]float64{10, 11, 10, 11}, 2)
	assertSeries(t, "rsi", got, []float64{nan, 100, 50, 50})
}

func TestCalculateWilderRSI(t *testing.T) {
	bars := make([]model.Bar, 16)
	for i := range bars {
		bars[i] = model.Bar{Close: float64(100 - i)}
	}
	rsi, err := CalculateWilderRSI(bars, 14)
	if err != nil {
		t.Fatal(err)
	}
	if rsi != 0 {
		t.Errorf("expected 0 for a falling series, got %v", rsi)
	}
	short, _ := CalculateWilderRSI(bars[:3], 14)
	if short != 50 {
		t.Errorf("expected default 50 on short data, got %v", short)
	}
}

func TestMACD_Constant(t *testing.T) {
	values := []float64{10, 10, 10, 10, 10}
	res, err := MACD(values, 12, 26, 9)
	if err != nil {
		t.Fatal(err)
	}
	for i := range values {
		if res.MACD[i] != 0 || res.Signal[i] != 0 || res.Histogram[i] != 0 {
			t.Errorf("row %d: expected zero macd, got %v/%v/%v", i, res.MACD[i], res.Signal[i], res.Histogram[i])
		}
	}
}

func TestMACD_FastMustBeBelowSlow(t *testing.T) {
	if _, err := MACD([]float64{1, 2}, 26, 12, 9); err == nil {
		t.Fatal("expected error for fast >= slow")
	}
}

func TestBollinger(t *testing.T) {
	bb, err := Bollinger([]float64{1, 2, 3}, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	assertSeries(t, "middle", bb.Middle, []float64{nan, nan, 2})
	assertSeries(t, "upper", bb.Upper, []float64{nan, nan, 4})
	assertSeries(t, "lower", bb.Lower, []float64{nan, nan, 0})
}

func TestMeanStdSkipNaN(t *testing.T) {
	if m := Mean([]float64{nan, 1, 3}); m != 2 {
		t.Errorf("expected mean 2, got %v", m)
	}
	if s := Std([]float64{nan, 1, 3}); !almostEqual(s, math.Sqrt2) {
		t.Errorf("expected std sqrt(2), got %v", s)
	}
	if s := Std([]float64{1}); !math.IsNaN(s) {
		t.Errorf("expected NaN std for one value, got %v", s)
	}
}

func TestRanges(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, 300)
	for i := range bars {
		p := float64(i + 1)
		bars[i] = model.Bar{Date: start.AddDate(0, 0, i), High: p + 1, Low: p - 1, Close: p}
	}
	high, low, err := Calculate52WeekRange(bars)
	if err != nil {
		t.Fatal(err)
	}
	if high != 301 || low != 48 {
		t.Errorf("52w range: expected 301/48, got %v/%v", high, low)
	}
	high, low, _ = Calculate30DayRange(bars)
	if high != 301 || low != 278 {
		t.Errorf("30d range: expected 301/278, got %v/%v", high, low)
	}
	if _, _, err := Calculate52WeekRange(nil); err == nil {
		t.Error("expected error for empty bars")
	}
}

func TestCalculate52WeekPosition(t *testing.T) {
	tests := []struct {
		current, high, low, want float64
	}{
		{150, 200, 100, 0.5},
		{250, 200, 100, 1},
		{50, 200, 100, 0},
		{100, 100, 100, 0.5},
	}
	for _, tt := range tests {
		got, err := Calculate52WeekPosition(tt.current, tt.high, tt.low)
		if err != nil || got != tt.want {
			t.Errorf("position(%v,%v,%v) = %v (%v), want %v", tt.current, tt.high, tt.low, got, err, tt.want)
		}
	}
}
