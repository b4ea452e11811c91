package app

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrollrank/internal/config"
	"enrollrank/internal/shared/testutil"
)

func newTestApplication(t *testing.T, mutate func(*config.Config)) *Application {
	t.Helper()
	cfg := config.Default()
	cfg.Security.RateLimit.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	logger, _ := testutil.NewTestLogger(t)
	app, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.OTelProviders.Shutdown(context.Background())
	})
	return app
}

func rankingUpload(t *testing.T, target string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mpw := multipart.NewWriter(&body)
	require.NoError(t, mpw.WriteField("periods", "2023,2022"))
	require.NoError(t, mpw.WriteField("min_total", "0"))
	part, err := mpw.CreateFormFile("file", "matriculas.xlsx")
	require.NoError(t, err)
	_, err = part.Write(testutil.WorkbookBytes(t, testutil.ScenarioSheets()...))
	require.NoError(t, err)
	require.NoError(t, mpw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mpw.FormDataContentType())
	return req
}

func serve(app *Application, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func TestApplication_Routes(t *testing.T) {
	app := newTestApplication(t, nil)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
		contentType    string
	}{
		{"dashboard", http.MethodGet, "/", http.StatusOK, "text/html"},
		{"health", http.MethodGet, "/api/health", http.StatusOK, "application/json"},
		{"readiness", http.MethodGet, "/api/health/ready", http.StatusOK, "application/json"},
		{"liveness", http.MethodGet, "/api/health/live", http.StatusOK, "application/json"},
		{"version", http.MethodGet, "/api/version", http.StatusOK, "application/json"},
		{"periods", http.MethodGet, "/api/v1/periods", http.StatusOK, "application/json"},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK, "text/plain"},
		{"unknown route", http.MethodGet, "/does-not-exist", http.StatusNotFound, "application/json"},
		{"wrong method", http.MethodDelete, "/api/health", http.StatusMethodNotAllowed, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(app, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), tt.contentType)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestApplication_RankingEndToEnd(t *testing.T) {
	app := newTestApplication(t, nil)

	req := rankingUpload(t, "/api/v1/rankings")
	req.Header.Set("X-Request-ID", "req-123")
	rec := serve(app, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	var resp struct {
		Status string `json:"status"`
		Count  int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 2, resp.Count)

	metrics := serve(app, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "enrollment_pipeline_runs_total")
}

func TestApplication_DashboardSubmit(t *testing.T) {
	app := newTestApplication(t, nil)

	rec := serve(app, rankingUpload(t, "/"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dados carregados com sucesso!")
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src")
}

func TestApplication_Export(t *testing.T) {
	app := newTestApplication(t, nil)

	rec := serve(app, rankingUpload(t, "/api/v1/rankings/export?format=csv"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `attachment; filename="ranking.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "Universidade A")
}

func TestApplication_RateLimit(t *testing.T) {
	app := newTestApplication(t, func(cfg *config.Config) {
		cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}
	})

	first := serve(app, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := serve(app, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}

func TestApplication_MetricsDisabled(t *testing.T) {
	app := newTestApplication(t, func(cfg *config.Config) {
		cfg.Telemetry.MetricExporter = "none"
	})

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApplication_RunStopsOnCancel(t *testing.T) {
	app := newTestApplication(t, nil)
	app.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestCheckTempDir(t *testing.T) {
	assert.NoError(t, checkTempDir(context.Background()))
}
