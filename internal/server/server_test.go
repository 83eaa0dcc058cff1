package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cnmzsjbz199328/LazyDog/internal/config"
	"github.com/cnmzsjbz199328/LazyDog/internal/llm"
	"github.com/cnmzsjbz199328/LazyDog/internal/notes"
	"github.com/cnmzsjbz199328/LazyDog/internal/store"
	"github.com/cnmzsjbz199328/LazyDog/internal/store/cache/memory"
	"github.com/cnmzsjbz199328/LazyDog/internal/store/sqlite"
	"github.com/cnmzsjbz199328/LazyDog/pkg/api"
)

type echoProvider struct {
	text string
}

func (p *echoProvider) Type() string           { return "openrouter" }
func (p *echoProvider) Name() string           { return "OpenRouter" }
func (p *echoProvider) SupportsFallback() bool { return false }
func (p *echoProvider) Models() []string       { return nil }

func (p *echoProvider) Call(_ context.Context, _ string, _ api.CallOptions) (*api.RawResponse, error) {
	return &api.RawResponse{APIType: "openrouter", StatusCode: 200}, nil
}

func (p *echoProvider) Format(raw *api.RawResponse) (*api.Completion, error) {
	return &api.Completion{Text: p.text, APIType: "openrouter", UsedModel: "test"}, nil
}

var dbSeq atomic.Int64

func newTestServer(t *testing.T, cfg *config.Config, responseText string) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:server_test_%d?mode=memory&cache=shared&_busy_timeout=5000", dbSeq.Add(1))
	repo, err := sqlite.NewSQLiteStorage(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	orch := llm.NewOrchestrator(nil, time.Second, zap.NewNop())
	orch.RegisterProvider(&echoProvider{text: responseText})

	service := notes.NewService(repo, store.NewNotifier(), orch, memory.NewMemoryCache(), config.AIConfig{
		DefaultAPIType: "openrouter",
		CacheTTL:       time.Hour,
	}, zap.NewNop())

	return New(cfg, zap.NewNop(), service, "v0.0.0-test").Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(t, &config.Config{}, "")

	w := doJSON(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "v0.0.0-test", resp.Version)
}

func TestGenerateMindMapEndpoint(t *testing.T) {
	h := newTestServer(t, &config.Config{}, "mindmap\n  root((Biology))\n    Cells")

	w := doJSON(t, h, http.MethodPost, "/api/v1/mindmap", api.GenerateMindMapRequest{
		Topic:   "Biology",
		Content: "lecture transcript",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.MindMapResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Biology", resp.Title)
	assert.Contains(t, resp.Code, "root((Biology))")
	assert.False(t, resp.Degraded)

	// the document is now retrievable
	w = doJSON(t, h, http.MethodGet, "/api/v1/mindmap", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestGenerateMindMapValidation(t *testing.T) {
	h := newTestServer(t, &config.Config{}, "")

	w := doJSON(t, h, http.MethodPost, "/api/v1/mindmap", map[string]string{"topic": "only topic"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.EqualValues(t, http.StatusBadRequest, problem["status"])
	errs, ok := problem["errors"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, errs, "content")
}

func TestGetMindMapNotFound(t *testing.T) {
	h := newTestServer(t, &config.Config{}, "")

	w := doJSON(t, h, http.MethodGet, "/api/v1/mindmap", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFlowchartEndpointDefaults(t *testing.T) {
	h := newTestServer(t, &config.Config{}, "")

	w := doJSON(t, h, http.MethodGet, "/api/v1/mindmap/flowchart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "flowchart TD")
}

func TestHistoryEndpoints(t *testing.T) {
	h := newTestServer(t, &config.Config{}, "")

	w := doJSON(t, h, http.MethodPost, "/api/v1/history", api.SaveHistoryRequest{
		MainPoint: "Photosynthesis",
		Content:   "plants convert light",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// placeholder values are rejected
	w = doJSON(t, h, http.MethodPost, "/api/v1/history", api.SaveHistoryRequest{
		MainPoint: "No main point",
		Content:   "x",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodGet, "/api/v1/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Photosynthesis")

	w = doJSON(t, h, http.MethodPost, "/api/v1/history/clean", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, http.MethodDelete, "/api/v1/history", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestBackgroundEndpoints(t *testing.T) {
	h := newTestServer(t, &config.Config{}, "")

	w := doJSON(t, h, http.MethodPost, "/api/v1/background", api.SetBackgroundRequest{Background: "chemistry course"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, http.MethodGet, "/api/v1/background", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "chemistry course")

	w = doJSON(t, h, http.MethodDelete, "/api/v1/background", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestProviderEndpoints(t *testing.T) {
	h := newTestServer(t, &config.Config{}, "")

	w := doJSON(t, h, http.MethodGet, "/api/v1/providers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openrouter")

	w = doJSON(t, h, http.MethodGet, "/api/v1/settings/api-type", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openrouter")

	w = doJSON(t, h, http.MethodPut, "/api/v1/settings/api-type", api.SetAPITypeRequest{APIType: "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodPut, "/api/v1/settings/api-type", api.SetAPITypeRequest{APIType: "openrouter"})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.APIKeys = []string{"secret-key"}
	h := newTestServer(t, cfg, "")

	w := doJSON(t, h, http.MethodGet, "/api/v1/providers", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/providers", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// health stays public
	w = doJSON(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	h := newTestServer(t, &config.Config{}, "")

	w := doJSON(t, h, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
