package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
)

// DecodeCSV reads OHLCV rows from a CSV stream with a header row.
// Date and Close columns are required.
func DecodeCSV(r io.Reader) ([]model.Bar, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty csv", ErrMissingField)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	fields := make([]field, len(header))
	var hasDate, hasClose, hasAdj bool
	for i, h := range header {
		fields[i] = fieldFor(h)
		switch fields[i] {
		case fieldDate:
			hasDate = true
		case fieldClose:
			hasClose = true
		case fieldAdjClose:
			hasAdj = true
		}
	}
	if !hasDate || !hasClose {
		return nil, fmt.Errorf("%w: csv needs Date and Close columns", ErrMissingField)
	}

	var bars []model.Bar
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if len(record) == 1 && record[0] == "" {
			continue
		}
		bar := newBar()
		for i, cell := range record {
			if i >= len(fields) {
				break
			}
			switch fields[i] {
			case fieldUnknown:
			case fieldDate:
				d, err := ParseDate(cell)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				bar.Date = d
			default:
				v, err := parseNumber(cell)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				setField(&bar, fields[i], v)
			}
		}
		bars = append(bars, bar)
	}
	return normalize(bars, hasAdj)
}

// EncodeCSV writes bars with the standard column layout.
func EncodeCSV(w io.Writer, bars []model.Bar) error {
	writer := csv.NewWriter(w)
	header := []string{"Date", model.ColOpen, model.ColHigh, model.ColLow, model.ColClose, model.ColVolume, model.ColAdjClose}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, b := range bars {
		row := []string{
			formatDate(b.Date),
			formatNumber(b.Open),
			formatNumber(b.High),
			formatNumber(b.Low),
			formatNumber(b.Close),
			formatNumber(b.Volume),
			formatNumber(b.AdjClose),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// EncodeFrameCSV writes a frame with a leading Date column. NaN cells are empty.
func EncodeFrameCSV(w io.Writer, f *model.Frame, columns ...string) error {
	if len(columns) == 0 {
		columns = f.Columns()
	}
	cols := make([][]float64, len(columns))
	for i, name := range columns {
		c, err := f.Column(name)
		if err != nil {
			return err
		}
		cols[i] = c
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(append([]string{"Date"}, columns...)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(columns)+1)
	for r := 0; r < f.Len(); r++ {
		row[0] = formatDate(f.Dates[r])
		for i := range cols {
			row[i+1] = formatNumber(cols[i][r])
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// DecodeFrameCSV reads a frame written by EncodeFrameCSV.
func DecodeFrameCSV(r io.Reader, symbol string) (*model.Frame, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	if len(records) == 0 || fieldFor(records[0][0]) != fieldDate {
		return nil, fmt.Errorf("%w: frame csv needs a leading Date column", ErrMissingField)
	}
	header := records[0]
	rows := records[1:]

	dates := make([]time.Time, len(rows))
	cols := make([][]float64, len(header)-1)
	for i := range cols {
		cols[i] = make([]float64, len(rows))
	}
	for r, rec := range rows {
		d, err := ParseDate(rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", r+2, err)
		}
		dates[r] = d
		for i := range cols {
			v, err := parseNumber(rec[i+1])
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", r+2, err)
			}
			cols[i][r] = v
		}
	}

	f := model.NewEmptyFrame(symbol, dates)
	for i, name := range header[1:] {
		if err := f.Set(name, cols[i]); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
