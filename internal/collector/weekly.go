package collector

import "github.com/LokeshGaddam14/stock-market-analysis/internal/model"

// AggregateWeekly converts daily bars into ISO-week bars. Each weekly bar is
// dated at the first trading day of its week.
func AggregateWeekly(daily []model.Bar) []model.Bar {
	if len(daily) == 0 {
		return nil
	}
	var weekly []model.Bar
	week := daily[0]
	for _, d := range daily[1:] {
		dy, dw := d.Date.ISOWeek()
		cy, cw := week.Date.ISOWeek()
		if dy != cy || dw != cw {
			weekly = append(weekly, week)
			week = d
			continue
		}
		if d.High > week.High {
			week.High = d.High
		}
		if d.Low < week.Low {
			week.Low = d.Low
		}
		week.Close = d.Close
		week.AdjClose = d.AdjClose
		week.Volume += d.Volume
	}
	return append(weekly, week)
}
