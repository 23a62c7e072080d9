package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/wxkit/dewpoint/internal/config"
	"github.com/wxkit/dewpoint/internal/meteo"
	"github.com/wxkit/dewpoint/internal/storage"
)

func newTestServer(t *testing.T) (*Server, storage.Storage) {
	t.Helper()

	cfg := config.NewDefault()
	cfg.History.Enabled = true
	cfg.Webserver.Enabled = true
	cfg.Storage.SQLite.Path = filepath.Join(t.TempDir(), "test_history.db")

	store, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("storage Init failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	s, err := NewServer(cfg, store, nil, meteo.Celsius, zap.NewNop())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return s, store
}

func doRequest(t *testing.T, s *Server, url string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status 'ok', got %q", resp.Status)
	}
}

func TestHandleDewPoint(t *testing.T) {
	s, store := newTestServer(t)

	rec := doRequest(t, s, "/api/v1/dewpoint?temperature=20&humidity=50")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dewPointResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Unit != "C" {
		t.Errorf("expected default unit C, got %q", resp.Unit)
	}
	if resp.DewPointRounded != 9 {
		t.Errorf("expected rounded dew point 9, got %d", resp.DewPointRounded)
	}

	// Computation should have been recorded.
	comps, err := store.GetComputations(context.Background(), storage.Filter{})
	if err != nil {
		t.Fatalf("GetComputations failed: %v", err)
	}
	if len(comps) != 1 {
		t.Fatalf("expected 1 recorded computation, got %d", len(comps))
	}
	if comps[0].Source != storage.SourceAPI {
		t.Errorf("expected source 'api', got %q", comps[0].Source)
	}
}

func TestHandleDewPointFahrenheit(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, "/api/v1/dewpoint?temperature=68&humidity=50&unit=f")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dewPointResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Unit != "F" {
		t.Errorf("expected unit F, got %q", resp.Unit)
	}
	if resp.DewPointRounded != 49 {
		t.Errorf("expected rounded dew point 49, got %d", resp.DewPointRounded)
	}
}

func TestHandleDewPointRejectsBadInput(t *testing.T) {
	s, _ := newTestServer(t)

	cases := []struct {
		name string
		url  string
	}{
		{"missing temperature", "/api/v1/dewpoint?humidity=50"},
		{"invalid temperature", "/api/v1/dewpoint?temperature=abc&humidity=50"},
		{"missing humidity", "/api/v1/dewpoint?temperature=20"},
		{"invalid humidity", "/api/v1/dewpoint?temperature=20&humidity=x"},
		{"zero humidity", "/api/v1/dewpoint?temperature=20&humidity=0"},
		{"negative humidity", "/api/v1/dewpoint?temperature=20&humidity=-5"},
		{"unknown unit", "/api/v1/dewpoint?temperature=20&humidity=50&unit=kelvin"},
	}

	for _, tc := range cases {
		rec := doRequest(t, s, tc.url)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, rec.Code)
		}
	}
}

func TestHandleGetHistory(t *testing.T) {
	s, store := newTestServer(t)
	ctx := context.Background()

	for _, c := range []*storage.Computation{
		storage.NewComputation(meteo.Celsius, 20, 50, 9.27, storage.SourceCLI),
		storage.NewComputation(meteo.Fahrenheit, 68, 50, 48.7, storage.SourceAPI),
	} {
		if err := store.SaveComputation(ctx, c); err != nil {
			t.Fatalf("SaveComputation failed: %v", err)
		}
	}

	rec := doRequest(t, s, "/api/v1/history")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp historyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Computations) != 2 {
		t.Errorf("expected 2 computations, got %d", len(resp.Computations))
	}

	rec = doRequest(t, s, "/api/v1/history?unit=f")
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Computations) != 1 || resp.Computations[0].Unit != "F" {
		t.Errorf("expected 1 Fahrenheit computation, got %+v", resp.Computations)
	}
}

func TestHandleGetHistoryLimitFallsBack(t *testing.T) {
	s, store := newTestServer(t)

	comp := storage.NewComputation(meteo.Celsius, 20, 50, 9.27, storage.SourceCLI)
	if err := store.SaveComputation(context.Background(), comp); err != nil {
		t.Fatalf("SaveComputation failed: %v", err)
	}

	// An unparsable or non-positive limit keeps the default instead of
	// turning into an unbounded query.
	for _, q := range []string{"limit=abc", "limit=0", "limit=-3", ""} {
		url := "/api/v1/history"
		if q != "" {
			url += "?" + q
		}
		rec := doRequest(t, s, url)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", q, rec.Code)
		}

		var resp historyResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: failed to decode response: %v", q, err)
		}
		if resp.Meta.Limit != 100 {
			t.Errorf("%s: expected default limit 100, got %d", q, resp.Meta.Limit)
		}
	}

	rec := doRequest(t, s, "/api/v1/history?limit=5")
	var resp historyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Meta.Limit != 5 {
		t.Errorf("expected explicit limit 5, got %d", resp.Meta.Limit)
	}
}

func TestHandleGetComputation(t *testing.T) {
	s, store := newTestServer(t)

	comp := storage.NewComputation(meteo.Celsius, 20, 50, 9.27, storage.SourceCLI)
	if err := store.SaveComputation(context.Background(), comp); err != nil {
		t.Fatalf("SaveComputation failed: %v", err)
	}

	rec := doRequest(t, s, "/api/v1/history/1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, s, "/api/v1/history/999")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing computation, got %d", rec.Code)
	}

	rec = doRequest(t, s, "/api/v1/history/abc")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-numeric id, got %d", rec.Code)
	}
}

func TestHandleGetStats(t *testing.T) {
	s, store := newTestServer(t)

	comp := storage.NewComputation(meteo.Celsius, 20, 50, 10, storage.SourceCLI)
	if err := store.SaveComputation(context.Background(), comp); err != nil {
		t.Fatalf("SaveComputation failed: %v", err)
	}

	rec := doRequest(t, s, "/api/v1/history/stats?period=1h")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var stats storage.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if stats.Count != 1 {
		t.Errorf("expected count 1, got %d", stats.Count)
	}

	rec = doRequest(t, s, "/api/v1/history/stats?period=bogus")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid period, got %d", rec.Code)
	}
}

func TestBasicAuth(t *testing.T) {
	cfg := config.NewDefault()
	cfg.History.Enabled = true
	cfg.Webserver.Enabled = true
	cfg.Webserver.Auth = &config.AuthConfig{Username: "user", Password: "pass"}
	cfg.Storage.SQLite.Path = filepath.Join(t.TempDir(), "test_history.db")

	store, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("storage Init failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	s, err := NewServer(cfg, store, nil, meteo.Celsius, zap.NewNop())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	// Health stays open.
	rec := doRequest(t, s, "/health")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for /health without auth, got %d", rec.Code)
	}

	// API requires credentials.
	rec = doRequest(t, s, "/api/v1/dewpoint?temperature=20&humidity=50")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without credentials, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dewpoint?temperature=20&humidity=50", nil)
	req.SetBasicAuth("user", "pass")
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with credentials, got %d", rec.Code)
	}
}
