package dataset

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
)

// portfolioColumns are written to the per-bar backtest CSV when present.
var portfolioColumns = []string{
	model.ColClose, "Signal", "Position", "Returns", "Strategy_returns", "Cumulative_returns", "Portfolio_value",
}

// Store reads and writes the data directory tree.
type Store struct {
	Layout *Layout
}

// NewStore creates a Store rooted at root.
func NewStore(root string) *Store {
	return &Store{Layout: NewLayout(root)}
}

// LoadSeries decodes the raw file for symbol. CSV is preferred when both exist.
func (s *Store) LoadSeries(kind model.Kind, symbol string) (*model.Series, error) {
	if !ValidSymbol(symbol) {
		return nil, fmt.Errorf("%w: invalid symbol %q", ErrNotFound, symbol)
	}
	path, format, err := s.Layout.findRaw(kind, symbol)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var bars []model.Bar
	switch format {
	case FormatCSV:
		bars, err = DecodeCSV(bytes.NewReader(data))
	case FormatJSON:
		bars, err = DecodeJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	log.Debug().Str("symbol", symbol).Str("path", path).Int("bars", len(bars)).Msg("loaded raw series")
	return &model.Series{
		Symbol:   strings.ToUpper(symbol),
		Kind:     kind,
		Bars:     bars,
		LoadedAt: time.Now(),
	}, nil
}

// SaveBars writes a raw file for the series in the given format.
func (s *Store) SaveBars(series *model.Series, format Format) error {
	path := s.Layout.RawPath(series.Kind, series.Symbol, format)
	return writeFile(path, func(w io.Writer) error {
		switch format {
		case FormatJSON:
			data, err := EncodeJSON(series.Bars)
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		default:
			return EncodeCSV(w, series.Bars)
		}
	})
}

// SaveFrame writes the processed technical indicator CSV for a frame.
func (s *Store) SaveFrame(f *model.Frame) error {
	return writeFile(s.Layout.ProcessedPath(f.Symbol), func(w io.Writer) error {
		return EncodeFrameCSV(w, f)
	})
}

// LoadFrame reads the processed technical indicator CSV for symbol.
func (s *Store) LoadFrame(symbol string) (*model.Frame, error) {
	if !ValidSymbol(symbol) {
		return nil, fmt.Errorf("%w: invalid symbol %q", ErrNotFound, symbol)
	}
	path := s.Layout.ProcessedPath(symbol)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	defer file.Close()
	return DecodeFrameCSV(file, strings.ToUpper(symbol))
}

// SavePortfolio writes the per-bar backtest columns of a frame.
func (s *Store) SavePortfolio(f *model.Frame) error {
	var cols []string
	for _, c := range portfolioColumns {
		if f.Has(c) {
			cols = append(cols, c)
		}
	}
	return writeFile(s.Layout.PortfolioPath(f.Symbol), func(w io.Writer) error {
		return EncodeFrameCSV(w, f, cols...)
	})
}

// SaveResults writes the backtest summary JSON.
func (s *Store) SaveResults(res *model.Results) error {
	data, err := sonic.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	path := s.Layout.ResultsPath(res.Symbol, res.ShortWindow, res.LongWindow)
	return writeFile(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// LoadResults reads the backtest summary JSON written by SaveResults.
func (s *Store) LoadResults(symbol string, short, long int) (*model.Results, error) {
	path := s.Layout.ResultsPath(symbol, short, long)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	var res model.Results
	if err := sonic.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return &res, nil
}

// writeFile writes through a temporary file and renames it into place so
// readers never observe a partial file.
func writeFile(path string, fn func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := fn(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
