package dataset

import (
	"fmt"
	"math"
	"time"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
)

// DecodeJSON reads OHLCV records from either a top-level array or an object
// holding a "data", "prices" or "bars" array.
func DecodeJSON(data []byte) ([]model.Bar, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("decode json: invalid document")
	}
	records := gjson.ParseBytes(data)
	if !records.IsArray() {
		for _, key := range []string{"data", "prices", "bars"} {
			if r := records.Get(key); r.IsArray() {
				records = r
				break
			}
		}
	}
	if !records.IsArray() {
		return nil, fmt.Errorf("%w: json needs an array of records", ErrMissingField)
	}

	var (
		bars   []model.Bar
		hasAdj bool
		err    error
	)
	records.ForEach(func(idx, rec gjson.Result) bool {
		bar := newBar()
		var hasDate, hasClose bool
		rec.ForEach(func(key, value gjson.Result) bool {
			f := fieldFor(key.String())
			switch f {
			case fieldUnknown:
				return true
			case fieldDate:
				bar.Date, err = jsonDate(value)
				hasDate = err == nil
			default:
				var v float64
				v, err = jsonNumber(value)
				setField(&bar, f, v)
				if f == fieldClose {
					hasClose = true
				}
				if f == fieldAdjClose {
					hasAdj = true
				}
			}
			return err == nil
		})
		if err != nil {
			err = fmt.Errorf("record %d: %w", idx.Int(), err)
			return false
		}
		if !hasDate || !hasClose {
			err = fmt.Errorf("%w: record %d needs Date and Close", ErrMissingField, idx.Int())
			return false
		}
		bars = append(bars, bar)
		return true
	})
	if err != nil {
		return nil, err
	}
	return normalize(bars, hasAdj)
}

func jsonDate(v gjson.Result) (time.Time, error) {
	if v.Type == gjson.Number {
		return fromUnix(v.Int()), nil
	}
	return ParseDate(v.String())
}

func jsonNumber(v gjson.Result) (float64, error) {
	switch v.Type {
	case gjson.Null:
		return math.NaN(), nil
	case gjson.Number:
		return v.Float(), nil
	case gjson.String:
		return parseNumber(v.Str)
	default:
		return 0, fmt.Errorf("unexpected json value %s", v.Raw)
	}
}

// barRecord is the JSON shape written for raw bars. Missing values become null.
type barRecord struct {
	Date     string   `json:"Date"`
	Open     *float64 `json:"Open"`
	High     *float64 `json:"High"`
	Low      *float64 `json:"Low"`
	Close    *float64 `json:"Close"`
	Volume   *float64 `json:"Volume"`
	AdjClose *float64 `json:"Adj Close"`
}

// EncodeJSON serialises bars as an array of records.
func EncodeJSON(bars []model.Bar) ([]byte, error) {
	records := make([]barRecord, len(bars))
	for i, b := range bars {
		records[i] = barRecord{
			Date:     formatDate(b.Date),
			Open:     nullable(b.Open),
			High:     nullable(b.High),
			Low:      nullable(b.Low),
			Close:    nullable(b.Close),
			Volume:   nullable(b.Volume),
			AdjClose: nullable(b.AdjClose),
		}
	}
	data, err := sonic.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return data, nil
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
