package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
)

// Format is an on-disk encoding for OHLCV files.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

const (
	dirStockPrices   = "raw/stock_prices"
	dirMarketIndices = "raw/market_indices"
	dirIndicators    = "processed/technical_indicators"
	dirResults       = "backtest/results"
)

var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9^._=-]{1,24}$`)

// ValidSymbol reports whether s is usable as a file stem.
func ValidSymbol(s string) bool {
	return symbolPattern.MatchString(s) && !strings.Contains(s, "..")
}

// Layout resolves paths inside the data directory tree.
type Layout struct {
	Root string
}

// NewLayout creates a Layout rooted at root.
func NewLayout(root string) *Layout {
	return &Layout{Root: root}
}

// Dirs returns every directory of the tree.
func (l *Layout) Dirs() []string {
	return []string{
		filepath.Join(l.Root, dirStockPrices),
		filepath.Join(l.Root, dirMarketIndices),
		filepath.Join(l.Root, dirIndicators),
		filepath.Join(l.Root, dirResults),
	}
}

// Ensure creates the directory tree. Existing directories are left alone.
func (l *Layout) Ensure() error {
	for _, d := range l.Dirs() {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", d, err)
		}
	}
	return nil
}

// RawDir returns the raw directory for kind.
func (l *Layout) RawDir(kind model.Kind) string {
	if kind == model.KindIndex {
		return filepath.Join(l.Root, dirMarketIndices)
	}
	return filepath.Join(l.Root, dirStockPrices)
}

// RawPath returns the raw file path for a symbol in the given format.
func (l *Layout) RawPath(kind model.Kind, symbol string, format Format) string {
	return filepath.Join(l.RawDir(kind), strings.ToUpper(symbol)+"."+string(format))
}

// ProcessedPath returns the technical indicator CSV for a symbol.
func (l *Layout) ProcessedPath(symbol string) string {
	return filepath.Join(l.Root, dirIndicators, strings.ToUpper(symbol)+".csv")
}

// ResultsPath returns the backtest result JSON for a symbol and window pair.
func (l *Layout) ResultsPath(symbol string, short, long int) string {
	name := fmt.Sprintf("%s_sma_%d_%d.json", strings.ToUpper(symbol), short, long)
	return filepath.Join(l.Root, dirResults, name)
}

// PortfolioPath returns the per-bar backtest CSV for a symbol.
func (l *Layout) PortfolioPath(symbol string) string {
	return filepath.Join(l.Root, dirResults, strings.ToUpper(symbol)+"_portfolio.csv")
}

// Symbols lists the symbols that have a raw CSV or JSON file for kind.
// A missing directory yields an empty list.
func (l *Layout) Symbols(kind model.Kind) ([]string, error) {
	entries, err := os.ReadDir(l.RawDir(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", l.RawDir(kind), err)
	}
	seen := make(map[string]bool)
	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		stem, format, ok := splitName(e.Name())
		if !ok || format == "" {
			continue
		}
		sym := strings.ToUpper(stem)
		if !seen[sym] {
			seen[sym] = true
			symbols = append(symbols, sym)
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// findRaw locates the raw file for symbol, preferring CSV over JSON.
func (l *Layout) findRaw(kind model.Kind, symbol string) (string, Format, error) {
	entries, err := os.ReadDir(l.RawDir(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", fmt.Errorf("%w: %s", ErrNotFound, symbol)
		}
		return "", "", err
	}
	var jsonPath string
	for _, e := range entries {
		stem, format, ok := splitName(e.Name())
		if !ok || !strings.EqualFold(stem, symbol) {
			continue
		}
		path := filepath.Join(l.RawDir(kind), e.Name())
		switch format {
		case FormatCSV:
			return path, FormatCSV, nil
		case FormatJSON:
			jsonPath = path
		}
	}
	if jsonPath != "" {
		return jsonPath, FormatJSON, nil
	}
	return "", "", fmt.Errorf("%w: %s", ErrNotFound, symbol)
}

func splitName(name string) (stem string, format Format, ok bool) {
	ext := strings.ToLower(filepath.Ext(name))
	stem = strings.TrimSuffix(name, filepath.Ext(name))
	switch ext {
	case ".csv":
		return stem, FormatCSV, stem != ""
	case ".json":
		return stem, FormatJSON, stem != ""
	default:
		return stem, "", false
	}
}
