package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliolens/foliolens/internal/database"
	"github.com/foliolens/foliolens/internal/domain"
	"github.com/foliolens/foliolens/internal/insights"
	"github.com/foliolens/foliolens/internal/portfolio"
)

type stubInsights struct {
	result *insights.QuantitativeInsights
	err    error
}

func (s *stubInsights) Analyze(_ context.Context, _ []portfolio.Position) (*insights.QuantitativeInsights, error) {
	return s.result, s.err
}

type stubStore struct {
	positions map[string]portfolio.Position
	listErr   error
}

func newStubStore(positions ...portfolio.Position) *stubStore {
	s := &stubStore{positions: map[string]portfolio.Position{}}
	for _, p := range positions {
		s.positions[p.Symbol] = p
	}
	return s
}

func (s *stubStore) List() ([]portfolio.Position, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := []portfolio.Position{}
	for _, p := range s.positions {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubStore) GetBySymbol(symbol string) (*portfolio.Position, error) {
	p, ok := s.positions[strings.ToUpper(symbol)]
	if !ok {
		return nil, portfolio.ErrNotFound
	}
	return &p, nil
}

func (s *stubStore) Upsert(p portfolio.Position) error {
	if p.Symbol == "" || p.Shares <= 0 {
		return errors.New("invalid position")
	}
	s.positions[strings.ToUpper(p.Symbol)] = p
	return nil
}

func (s *stubStore) Delete(symbol string) error {
	key := strings.ToUpper(symbol)
	if _, ok := s.positions[key]; !ok {
		return portfolio.ErrNotFound
	}
	delete(s.positions, key)
	return nil
}

func (s *stubStore) ReplaceAll(positions []portfolio.Position) error {
	next := map[string]portfolio.Position{}
	for _, p := range positions {
		if p.Symbol == "" || p.Shares <= 0 {
			return errors.New("invalid position")
		}
		next[strings.ToUpper(p.Symbol)] = p
	}
	s.positions = next
	return nil
}

type stubMarket struct {
	histories map[string][]domain.Bar
	benchmark []domain.Bar
}

func (m *stubMarket) History(_ context.Context, symbol, _ string) []domain.Bar {
	return m.histories[symbol]
}

func (m *stubMarket) Benchmark(_ context.Context, _ string) []domain.Bar {
	return m.benchmark
}

func (m *stubMarket) RiskFreeRate(_ context.Context) float64 { return 0.04 }

func risingBars(start float64, n int) []domain.Bar {
	bars := make([]domain.Bar, n)
	for i := range bars {
		p := start + float64(i)
		bars[i] = domain.Bar{
			Date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Close:    p,
			AdjClose: p,
		}
	}
	return bars
}

func sampleInsightsResult() *insights.QuantitativeInsights {
	return &insights.QuantitativeInsights{
		Portfolio: insights.PortfolioMetrics{TotalValue: 2000, SharpeRatio: 1.2, Beta: 1.0},
		Holdings: []insights.HoldingView{
			{Symbol: "AAPL", Allocation: 100, Recommendation: insights.ActionHold},
		},
		Insights: []insights.Insight{},
		MarketContext: insights.MarketContext{
			Regime:     insights.RegimeSideways,
			Volatility: insights.VolatilityMedium,
			Sentiment:  "Sideways market - range-bound trading conditions",
		},
	}
}

func newTestServer(t *testing.T, svc InsightsService, store PositionStore, market MarketDataService) *httptest.Server {
	t.Helper()
	s := New(Config{
		Log:       zerolog.Nop(),
		Port:      0,
		DevMode:   true,
		Insights:  svc,
		Positions: store,
		Market:    market,
		Lookback:  "1y",
	})
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return srv
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHandleAnalyze(t *testing.T) {
	srv := newTestServer(t, &stubInsights{result: sampleInsightsResult()}, newStubStore(), &stubMarket{})

	payload := `{"positions":[{"symbol":"AAPL","shares":10,"current_price":190,"purchase_price":150}]}`
	resp, err := http.Post(srv.URL+"/api/insights/analyze", "application/json", bytes.NewBufferString(payload))
	require.NoError(t, err)

	body := decodeBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	portfolioData := data["portfolio"].(map[string]interface{})
	assert.Equal(t, 2000.0, portfolioData["total_value"])
	assert.NotEmpty(t, body["metadata"])
}

func TestHandleAnalyzeEmptyPositions(t *testing.T) {
	srv := newTestServer(t, &stubInsights{result: sampleInsightsResult()}, newStubStore(), &stubMarket{})

	resp, err := http.Post(srv.URL+"/api/insights/analyze", "application/json", bytes.NewBufferString(`{"positions":[]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleAnalyzeEngineError(t *testing.T) {
	srv := newTestServer(t, &stubInsights{err: errors.New("portfolio has no market value")}, newStubStore(), &stubMarket{})

	payload := `{"positions":[{"symbol":"AAPL","shares":10}]}`
	resp, err := http.Post(srv.URL+"/api/insights/analyze", "application/json", bytes.NewBufferString(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHandlePortfolioInsights(t *testing.T) {
	store := newStubStore(portfolio.Position{Symbol: "AAPL", Shares: 10, CurrentPrice: 190, PurchasePrice: 150})
	srv := newTestServer(t, &stubInsights{result: sampleInsightsResult()}, store, &stubMarket{})

	resp, err := http.Get(srv.URL + "/api/insights/portfolio")
	require.NoError(t, err)

	body := decodeBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["data"].(map[string]interface{}), "holdings")
}

func TestHandleReport(t *testing.T) {
	srv := newTestServer(t, &stubInsights{result: sampleInsightsResult()}, newStubStore(), &stubMarket{})

	resp, err := http.Get(srv.URL + "/api/insights/report")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/markdown")

	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "# QUANTITATIVE ANALYSIS RESULTS")
}

func TestHandleSymbolMetrics(t *testing.T) {
	market := &stubMarket{
		histories: map[string][]domain.Bar{"AAPL": risingBars(100, 30)},
		benchmark: risingBars(400, 30),
	}
	srv := newTestServer(t, &stubInsights{}, newStubStore(), market)

	resp, err := http.Get(srv.URL + "/api/metrics/AAPL")
	require.NoError(t, err)

	body := decodeBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "AAPL", data["symbol"])
	assert.NotEmpty(t, data["interpretations"])

	// A strictly rising series has no downside days; the Sortino ratio
	// must still come back as a finite JSON number
	metrics := data["metrics"].(map[string]interface{})
	assert.Equal(t, 0.0, metrics["sortino_ratio"])
	assert.NotZero(t, metrics["sharpe_ratio"])
}

func TestHandleSymbolMetricsNotFound(t *testing.T) {
	srv := newTestServer(t, &stubInsights{}, newStubStore(), &stubMarket{})

	resp, err := http.Get(srv.URL + "/api/metrics/BOGUS")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPortfolioCRUD(t *testing.T) {
	store := newStubStore()
	srv := newTestServer(t, &stubInsights{}, store, &stubMarket{})
	client := srv.Client()

	// Create
	payload := `{"symbol":"AAPL","name":"Apple Inc.","shares":10,"current_price":190,"purchase_price":150}`
	resp, err := client.Post(srv.URL+"/api/portfolio/positions", "application/json", bytes.NewBufferString(payload))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Read one
	resp, err = client.Get(srv.URL + "/api/portfolio/positions/AAPL")
	require.NoError(t, err)
	body := decodeBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "AAPL", body["data"].(map[string]interface{})["symbol"])

	// Replace
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/portfolio/positions",
		bytes.NewBufferString(`{"positions":[{"symbol":"MSFT","shares":5,"current_price":400,"purchase_price":300}]}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The old position is gone after the replace
	resp, err = client.Get(srv.URL + "/api/portfolio/positions/AAPL")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Delete
	req, err = http.NewRequest(http.MethodDelete, srv.URL+"/api/portfolio/positions/MSFT", nil)
	require.NoError(t, err)
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Delete again
	req, err = http.NewRequest(http.MethodDelete, srv.URL+"/api/portfolio/positions/MSFT", nil)
	require.NoError(t, err)
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubInsights{}, newStubStore(), &stubMarket{})

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)

	body := decodeBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["data"].(map[string]interface{})["status"])
}

func TestHealthEndpointDeepCheck(t *testing.T) {
	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := New(Config{
		Log:       zerolog.Nop(),
		DevMode:   true,
		CacheDB:   db,
		Insights:  &stubInsights{},
		Positions: newStubStore(),
		Market:    &stubMarket{},
		Lookback:  "1y",
	})
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)

	// deep=true runs the integrity check against the real database file
	resp, err := http.Get(srv.URL + "/api/health?deep=true")
	require.NoError(t, err)

	body := decodeBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, "ok", data["databases"].(map[string]interface{})["cache"])
}
