package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrMissingColumn is returned when a required frame column is absent.
var ErrMissingColumn = errors.New("missing column")

// Standard column names shared by the calculator, strategy and dataset packages.
const (
	ColOpen     = "Open"
	ColHigh     = "High"
	ColLow      = "Low"
	ColClose    = "Close"
	ColVolume   = "Volume"
	ColAdjClose = "Adj Close"
)

// Frame is a column-oriented table aligned to a date index.
// Undefined values are NaN.
type Frame struct {
	Symbol string
	Dates  []time.Time
	cols   map[string][]float64
	order  []string
}

// NewFrame builds a frame holding the OHLCV columns of a series.
func NewFrame(s *Series) *Frame {
	n := len(s.Bars)
	f := &Frame{Symbol: s.Symbol, Dates: make([]time.Time, n), cols: make(map[string][]float64)}
	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	cls := make([]float64, n)
	vol := make([]float64, n)
	adj := make([]float64, n)
	for i, b := range s.Bars {
		f.Dates[i] = b.Date
		open[i], high[i], low[i], cls[i], vol[i], adj[i] = b.Open, b.High, b.Low, b.Close, b.Volume, b.AdjClose
	}
	f.put(ColOpen, open)
	f.put(ColHigh, high)
	f.put(ColLow, low)
	f.put(ColClose, cls)
	f.put(ColVolume, vol)
	f.put(ColAdjClose, adj)
	return f
}

// NewEmptyFrame builds a frame with only a date index.
func NewEmptyFrame(symbol string, dates []time.Time) *Frame {
	d := make([]time.Time, len(dates))
	copy(d, dates)
	return &Frame{Symbol: symbol, Dates: d, cols: make(map[string][]float64)}
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.Dates) }

// Set adds or replaces a column. The slice is stored as given.
func (f *Frame) Set(name string, values []float64) error {
	if len(values) != len(f.Dates) {
		return fmt.Errorf("column %s: length %d, want %d", name, len(values), len(f.Dates))
	}
	f.put(name, values)
	return nil
}

func (f *Frame) put(name string, values []float64) {
	if _, ok := f.cols[name]; !ok {
		f.order = append(f.order, name)
	}
	f.cols[name] = values
}

// Has reports whether the column exists.
func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Column returns the named column or ErrMissingColumn.
func (f *Frame) Column(name string) ([]float64, error) {
	v, ok := f.cols[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	return v, nil
}

// Columns returns the column names in insertion order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Value returns a single cell, NaN when the column is absent or out of range.
func (f *Frame) Value(name string, i int) float64 {
	v, ok := f.cols[name]
	if !ok || i < 0 || i >= len(v) {
		return math.NaN()
	}
	return v[i]
}

// Copy returns a deep copy so callers can add columns without touching the source.
func (f *Frame) Copy() *Frame {
	c := NewEmptyFrame(f.Symbol, f.Dates)
	for _, name := range f.order {
		v := make([]float64, len(f.cols[name]))
		copy(v, f.cols[name])
		c.put(name, v)
	}
	return c
}

// Tail returns a copy holding the last n rows.
func (f *Frame) Tail(n int) *Frame {
	if n <= 0 || n >= f.Len() {
		return f.Copy()
	}
	start := f.Len() - n
	c := NewEmptyFrame(f.Symbol, f.Dates[start:])
	for _, name := range f.order {
		v := make([]float64, n)
		copy(v, f.cols[name][start:])
		c.put(name, v)
	}
	return c
}
