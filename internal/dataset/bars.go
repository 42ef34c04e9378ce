package dataset

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
)

var (
	// ErrNotFound is returned when no raw file exists for a symbol.
	ErrNotFound = errors.New("symbol data not found")
	// ErrInvalidBar is returned for rows that violate OHLCV constraints.
	ErrInvalidBar = errors.New("invalid bar")
	// ErrMissingField is returned when a required column is absent.
	ErrMissingField = errors.New("missing required field")
)

type field int

const (
	fieldUnknown field = iota
	fieldDate
	fieldOpen
	fieldHigh
	fieldLow
	fieldClose
	fieldVolume
	fieldAdjClose
)

// fieldFor maps a column or key name to a bar field. Matching ignores case,
// spaces, underscores, dots and dashes, so "Adj Close" and "adj_close" agree.
func fieldFor(name string) field {
	key := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '.', '-', '\ufeff':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
	switch key {
	case "date", "timestamp", "time", "datetime":
		return fieldDate
	case "open", "o":
		return fieldOpen
	case "high", "h":
		return fieldHigh
	case "low", "l":
		return fieldLow
	case "close", "c":
		return fieldClose
	case "volume", "vol", "v":
		return fieldVolume
	case "adjclose", "adjustedclose":
		return fieldAdjClose
	default:
		return fieldUnknown
	}
}

// parseNumber decodes a numeric cell. Empty, null and NaN cells are NaN.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "null", "nan", "na", "n/a", "-":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", s, err)
	}
	return v, nil
}

func newBar() model.Bar {
	nan := math.NaN()
	return model.Bar{Open: nan, High: nan, Low: nan, Close: nan, Volume: nan, AdjClose: nan}
}

func setField(b *model.Bar, f field, v float64) {
	switch f {
	case fieldOpen:
		b.Open = v
	case fieldHigh:
		b.High = v
	case fieldLow:
		b.Low = v
	case fieldClose:
		b.Close = v
	case fieldVolume:
		b.Volume = v
	case fieldAdjClose:
		b.AdjClose = v
	}
}

// normalize sorts bars by date, keeps the last row of duplicated dates,
// defaults AdjClose to Close when the source had no such column and rejects
// kept rows that break OHLCV constraints.
func normalize(bars []model.Bar, hasAdj bool) ([]model.Bar, error) {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	for i := range out {
		b := &out[i]
		if !hasAdj {
			b.AdjClose = b.Close
		}
		if b.Volume < 0 {
			return nil, fmt.Errorf("%w: %s negative volume %v", ErrInvalidBar, formatDate(b.Date), b.Volume)
		}
		if b.High < b.Low {
			return nil, fmt.Errorf("%w: %s high %v below low %v", ErrInvalidBar, formatDate(b.Date), b.High, b.Low)
		}
	}
	return out, nil
}
