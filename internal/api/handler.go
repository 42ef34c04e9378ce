package api

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/dataset"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/recorder"
)

const (
	defaultIndicatorRows = 30
	maxIndicatorRows     = 5000
	maxHistory           = 500
)

// Handler serves read-only analysis data.
type Handler struct {
	store       *dataset.Store
	recorder    recorder.Recorder
	shortWindow int
	longWindow  int
	lastRun     func() time.Time
}

// HandlerOption customises a Handler.
type HandlerOption func(*Handler)

// WithWindows sets the SMA windows used to find result files when the
// recorder has no run for a symbol.
func WithWindows(short, long int) HandlerOption {
	return func(h *Handler) { h.shortWindow, h.longWindow = short, long }
}

// WithLastRun reports the last refresh time on /healthz.
func WithLastRun(fn func() time.Time) HandlerOption {
	return func(h *Handler) { h.lastRun = fn }
}

// NewHandler creates a Handler.
func NewHandler(store *dataset.Store, rec recorder.Recorder, opts ...HandlerOption) *Handler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	h := &Handler{store: store, recorder: rec, shortWindow: 20, longWindow: 50}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes mounts the API routes on e.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api/v1")
	g.GET("/symbols", h.Symbols)
	g.GET("/backtests/:symbol", h.LatestBacktest)
	g.GET("/backtests/:symbol/history", h.BacktestHistory)
	g.GET("/indicators/:symbol", h.Indicators)
}

// Health reports liveness and the last refresh time.
func (h *Handler) Health(c echo.Context) error {
	data := map[string]any{"status": "ok"}
	if h.lastRun != nil {
		if t := h.lastRun(); !t.IsZero() {
			data["last_refresh"] = t.UTC().Format(time.RFC3339)
		}
	}
	return success(c, data)
}

// Symbols lists the raw stock and index symbols.
func (h *Handler) Symbols(c echo.Context) error {
	stocks, err := h.store.Layout.Symbols(model.KindStock)
	if err != nil {
		log.Error().Err(err).Msg("list stock symbols")
		return internalError(c)
	}
	indices, err := h.store.Layout.Symbols(model.KindIndex)
	if err != nil {
		log.Error().Err(err).Msg("list index symbols")
		return internalError(c)
	}
	return success(c, map[string][]string{
		string(model.KindStock): nonNil(stocks),
		string(model.KindIndex): nonNil(indices),
	})
}

// LatestBacktest returns the newest recorded run for a symbol, falling back
// to the saved results file.
func (h *Handler) LatestBacktest(c echo.Context) error {
	symbol, ok := symbolParam(c)
	if !ok {
		return badRequest(c, "invalid symbol")
	}
	run, err := h.recorder.LatestRun(symbol)
	if err == nil {
		return success(c, run)
	}
	if !errors.Is(err, recorder.ErrNoRuns) {
		log.Error().Err(err).Str("symbol", symbol).Msg("latest run")
		return internalError(c)
	}

	res, err := h.store.LoadResults(symbol, h.shortWindow, h.longWindow)
	if errors.Is(err, dataset.ErrNotFound) {
		return notFound(c, "no backtest for "+symbol)
	}
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("load results")
		return internalError(c)
	}
	return success(c, res)
}

// BacktestHistory returns up to ?limit= recorded runs, newest first.
func (h *Handler) BacktestHistory(c echo.Context) error {
	symbol, ok := symbolParam(c)
	if !ok {
		return badRequest(c, "invalid symbol")
	}
	limit, err := intQuery(c, "limit", recorder.DefaultHistoryLimit, maxHistory)
	if err != nil {
		return badRequest(c, err.Error())
	}
	runs, err := h.recorder.ListRuns(symbol, limit)
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("list runs")
		return internalError(c)
	}
	if runs == nil {
		runs = []recorder.Run{}
	}
	return success(c, runs)
}

// Indicators returns the last ?last= rows of the processed indicator file.
func (h *Handler) Indicators(c echo.Context) error {
	symbol, ok := symbolParam(c)
	if !ok {
		return badRequest(c, "invalid symbol")
	}
	last, err := intQuery(c, "last", defaultIndicatorRows, maxIndicatorRows)
	if err != nil {
		return badRequest(c, err.Error())
	}
	frame, err := h.store.LoadFrame(symbol)
	if errors.Is(err, dataset.ErrNotFound) {
		return notFound(c, "no indicators for "+symbol)
	}
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("load indicators")
		return internalError(c)
	}
	tail := frame.Tail(last)
	return success(c, map[string]any{
		"symbol":  tail.Symbol,
		"columns": tail.Columns(),
		"rows":    frameRows(tail),
	})
}

// frameRows converts a frame to JSON-safe rows; undefined values become null.
func frameRows(f *model.Frame) []map[string]any {
	cols := f.Columns()
	rows := make([]map[string]any, f.Len())
	for i, d := range f.Dates {
		row := make(map[string]any, len(cols)+1)
		row["Date"] = d.Format("2006-01-02")
		for _, col := range cols {
			v := f.Value(col, i)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				row[col] = nil
				continue
			}
			row[col] = v
		}
		rows[i] = row
	}
	return rows
}

func symbolParam(c echo.Context) (string, bool) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	return symbol, dataset.ValidSymbol(symbol)
}

func intQuery(c echo.Context, name string, def, max int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New(name + " must be a positive integer")
	}
	if n > max {
		n = max
	}
	return n, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

