package api

import (
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tidwall/gjson"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/dataset"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/metrics"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/recorder"
)

type fixture struct {
	server *Server
	store  *dataset.Store
	rec    *recorder.SQLiteRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := dataset.NewStore(t.TempDir())
	if err := store.Layout.Ensure(); err != nil {
		t.Fatal(err)
	}
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { rec.Close() })

	reg := prometheus.NewRegistry()
	metrics.New(reg).RecordBacktest("AAPL", 1.2, 0.3)

	last := time.Date(2024, 6, 3, 18, 30, 0, 0, time.UTC)
	h := NewHandler(store, rec, WithWindows(20, 50), WithLastRun(func() time.Time { return last }))
	return &fixture{server: NewServer(":0", h, reg), store: store, rec: rec}
}

func (f *fixture) get(t *testing.T, path string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	f.server.Echo().ServeHTTP(rec, req)
	return rec.Code, rec.Body.Bytes()
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	code, body := f.get(t, "/healthz")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if gjson.GetBytes(body, "data.status").String() != "ok" {
		t.Errorf("unexpected body %s", body)
	}
	if gjson.GetBytes(body, "data.last_refresh").String() != "2024-06-03T18:30:00Z" {
		t.Errorf("unexpected last refresh in %s", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	code, body := f.get(t, "/metrics")
	if code != http.StatusOK || !strings.Contains(string(body), `stock_analysis_last_sharpe_ratio{symbol="AAPL"} 1.2`) {
		t.Errorf("unexpected metrics response %d:\n%s", code, body)
	}
}

func TestSymbols(t *testing.T) {
	f := newFixture(t)
	bars := []model.Bar{{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Open: 1, High: 1, Low: 1, Close: 1, Volume: 1, AdjClose: 1}}
	_ = f.store.SaveBars(&model.Series{Symbol: "MSFT", Kind: model.KindStock, Bars: bars}, dataset.FormatCSV)
	_ = f.store.SaveBars(&model.Series{Symbol: "^GSPC", Kind: model.KindIndex, Bars: bars}, dataset.FormatJSON)

	code, body := f.get(t, "/api/v1/symbols")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if got := gjson.GetBytes(body, "data.stock.0").String(); got != "MSFT" {
		t.Errorf("stock symbols = %s", gjson.GetBytes(body, "data.stock").Raw)
	}
	if got := gjson.GetBytes(body, "data.index.0").String(); got != "^GSPC" {
		t.Errorf("index symbols = %s", gjson.GetBytes(body, "data.index").Raw)
	}
}

func sampleResults(symbol string, total float64) *model.Results {
	return &model.Results{
		Symbol: symbol, Strategy: "sma_crossover", ShortWindow: 20, LongWindow: 50,
		InitialCapital: 100000, Bars: 100, TotalReturn: total, FinalPortfolioValue: 100000 * (1 + total),
		StartDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestLatestBacktest(t *testing.T) {
	f := newFixture(t)
	cross := []model.Crossover{{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Signal: 1, Position: 2, Close: 180}}
	id, err := f.rec.RecordRun(sampleResults("AAPL", 0.25), cross)
	if err != nil {
		t.Fatal(err)
	}

	code, body := f.get(t, "/api/v1/backtests/aapl")
	if code != http.StatusOK {
		t.Fatalf("status = %d: %s", code, body)
	}
	if gjson.GetBytes(body, "data.id").String() != id {
		t.Errorf("expected run %s in %s", id, body)
	}
	if gjson.GetBytes(body, "data.total_return").Float() != 0.25 {
		t.Errorf("unexpected total return in %s", body)
	}
	if gjson.GetBytes(body, "data.crossovers.#").Int() != 1 {
		t.Errorf("expected one crossover in %s", body)
	}
}

func TestLatestBacktest_FallsBackToResultsFile(t *testing.T) {
	f := newFixture(t)
	if err := f.store.SaveResults(sampleResults("TSLA", -0.1)); err != nil {
		t.Fatal(err)
	}
	code, body := f.get(t, "/api/v1/backtests/TSLA")
	if code != http.StatusOK || gjson.GetBytes(body, "data.total_return").Float() != -0.1 {
		t.Errorf("unexpected fallback response %d: %s", code, body)
	}

	code, body = f.get(t, "/api/v1/backtests/NONE")
	if code != http.StatusNotFound || gjson.GetBytes(body, "status").Int() != 404 {
		t.Errorf("expected 404 envelope, got %d: %s", code, body)
	}
}

func TestBacktestHistory(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		if _, err := f.rec.RecordRun(sampleResults("AAPL", float64(i)/10), nil); err != nil {
			t.Fatal(err)
		}
	}
	code, body := f.get(t, "/api/v1/backtests/AAPL/history?limit=2")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if n := gjson.GetBytes(body, "data.#").Int(); n != 2 {
		t.Errorf("expected 2 runs, got %d: %s", n, body)
	}

	code, body = f.get(t, "/api/v1/backtests/MSFT/history")
	if code != http.StatusOK || gjson.GetBytes(body, "data").Raw != "[]" {
		t.Errorf("expected empty list, got %d: %s", code, body)
	}

	if code, _ := f.get(t, "/api/v1/backtests/AAPL/history?limit=abc"); code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", code)
	}
}

func TestIndicators(t *testing.T) {
	f := newFixture(t)
	dates := make([]time.Time, 5)
	for i := range dates {
		dates[i] = time.Date(2024, 1, 2+i, 0, 0, 0, 0, time.UTC)
	}
	frame := model.NewEmptyFrame("AAPL", dates)
	_ = frame.Set(model.ColClose, []float64{10, 11, 12, 13, 14})
	_ = frame.Set("SMA_3", []float64{math.NaN(), math.NaN(), 11, 12, 13})
	if err := f.store.SaveFrame(frame); err != nil {
		t.Fatal(err)
	}

	code, body := f.get(t, "/api/v1/indicators/AAPL?last=3")
	if code != http.StatusOK {
		t.Fatalf("status = %d: %s", code, body)
	}
	if n := gjson.GetBytes(body, "data.rows.#").Int(); n != 3 {
		t.Fatalf("expected 3 rows, got %d: %s", n, body)
	}
	if got := gjson.GetBytes(body, "data.rows.0.Date").String(); got != "2024-01-04" {
		t.Errorf("first row date = %s", got)
	}
	if got := gjson.GetBytes(body, "data.rows.2.SMA_3").Float(); got != 13 {
		t.Errorf("SMA_3 = %v", got)
	}

	_, body = f.get(t, "/api/v1/indicators/AAPL?last=5")
	if v := gjson.GetBytes(body, "data.rows.0.SMA_3"); v.Type != gjson.Null {
		t.Errorf("expected null warm-up value, got %s", v.Raw)
	}

	if code, _ := f.get(t, "/api/v1/indicators/MSFT"); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
	if code, _ := f.get(t, "/api/v1/indicators/..%2Fetc"); code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid symbol, got %d", code)
	}
}
