package collector

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
)

func TestCollect_MockSource(t *testing.T) {
	c := NewCollector(&MockSource{Price: 100, Count: 300})
	series, snap, err := c.Collect(model.KindStock, "aapl")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if series.Symbol != "AAPL" || len(series.Bars) != 300 {
		t.Fatalf("unexpected series %s with %d bars", series.Symbol, len(series.Bars))
	}
	if snap.CurrentPrice <= 0 {
		t.Errorf("expected positive price, got %v", snap.CurrentPrice)
	}
	// steady uptrend: short averages sit above long ones
	if !(snap.SMA20 > snap.SMA50 && snap.SMA50 > snap.SMA200) {
		t.Errorf("expected SMA20 > SMA50 > SMA200, got %v %v %v", snap.SMA20, snap.SMA50, snap.SMA200)
	}
	if snap.DailyRSI != 100 {
		t.Errorf("expected RSI 100 on a monotonic rise, got %v", snap.DailyRSI)
	}
	if snap.Position52w < 0.9 {
		t.Errorf("expected price near the 52-week high, got %v", snap.Position52w)
	}
}

func TestCollect_ShortHistoryFallsBack(t *testing.T) {
	c := NewCollector(&MockSource{Price: 50, Count: 5})
	_, snap, err := c.Collect(model.KindIndex, "^GSPC")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if snap.SMA200 != snap.CurrentPrice || snap.SMA20 != snap.CurrentPrice {
		t.Errorf("expected SMA fallback to current price, got %+v", snap)
	}
	if snap.DailyRSI != 50 || snap.WeeklyRSI != 50 {
		t.Errorf("expected RSI 50 on short data, got %v/%v", snap.DailyRSI, snap.WeeklyRSI)
	}
	for _, v := range []float64{snap.EMA12, snap.MACD, snap.BBUpper, snap.BBLower} {
		if math.IsNaN(v) {
			t.Errorf("snapshot must not contain NaN: %+v", snap)
		}
	}
}

func TestCollect_ForwardFillsAndDropsLeading(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	nan := math.NaN()
	bars := []model.Bar{
		{Date: day, Open: nan, High: nan, Low: nan, Close: nan, Volume: nan, AdjClose: nan},
		{Date: day.AddDate(0, 0, 1), Open: 10, High: 11, Low: 9, Close: 10, Volume: 5, AdjClose: 10},
		{Date: day.AddDate(0, 0, 2), Open: 10, High: 12, Low: 9, Close: nan, Volume: 6, AdjClose: nan},
	}
	c := NewCollector(&MockSource{Bars: bars})
	series, snap, err := c.Collect(model.KindStock, "x")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(series.Bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(series.Bars))
	}
	if series.Bars[1].Close != 10 || snap.CurrentPrice != 10 {
		t.Errorf("expected forward-filled close, got %+v", series.Bars[1])
	}
	if !math.IsNaN(bars[2].Close) {
		t.Error("source bars must not be mutated")
	}
}

func TestCollect_OutlierFilter(t *testing.T) {
	bars := generateMockBars(100, 60)
	bars[30].Close *= 3
	c := NewCollector(&MockSource{Bars: bars}, WithOutlierFilter(1.5))
	series, _, err := c.Collect(model.KindStock, "x")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	for _, b := range series.Bars {
		if b.Close > 200 {
			t.Errorf("spike bar should have been dropped: %+v", b)
		}
	}
}

func TestCollect_Errors(t *testing.T) {
	boom := errors.New("boom")
	c := NewCollector(&MockSource{Err: boom})
	if _, _, err := c.Collect(model.KindStock, "x"); !errors.Is(err, boom) {
		t.Errorf("expected wrapped source error, got %v", err)
	}
	nan := math.NaN()
	empty := NewCollector(&MockSource{Bars: []model.Bar{{Date: time.Now(), Close: nan}}})
	if _, _, err := empty.Collect(model.KindStock, "x"); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestAggregateWeekly(t *testing.T) {
	// Monday 2024-01-01 through Wednesday 2024-01-10
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var daily []model.Bar
	for i := 0; i < 10; i++ {
		d := start.AddDate(0, 0, i)
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		p := float64(100 + i)
		daily = append(daily, model.Bar{Date: d, Open: p, High: p + 1, Low: p - 1, Close: p, Volume: 10, AdjClose: p})
	}
	weekly := AggregateWeekly(daily)
	if len(weekly) != 2 {
		t.Fatalf("expected 2 weeks, got %d", len(weekly))
	}
	w := weekly[0]
	if w.Open != 100 || w.Close != 104 || w.High != 105 || w.Low != 99 || w.Volume != 50 {
		t.Errorf("unexpected first week %+v", w)
	}
	if weekly[1].Volume != 30 {
		t.Errorf("expected 3 days in second week, got volume %v", weekly[1].Volume)
	}
	if AggregateWeekly(nil) != nil {
		t.Error("expected nil for empty input")
	}
}
