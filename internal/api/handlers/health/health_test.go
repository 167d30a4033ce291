package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"recipe-search/internal/core/cache"
	"recipe-search/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// scanStore 模擬需要掃描才能得知大小的快取
type scanStore struct {
	scans int
}

func (s *scanStore) Get(ctx context.Context, key string) ([]byte, bool) { return nil, false }

func (s *scanStore) Set(ctx context.Context, key string, value []byte) error { return nil }

func (s *scanStore) Clear(ctx context.Context) error { return nil }

func (s *scanStore) Close() error { return nil }

func (s *scanStore) Stats() cache.Stats {
	return cache.Stats{Backend: config.CacheBackendRedis, Size: cache.SizeUnknown, Hits: 3, Misses: 1}
}

func (s *scanStore) Size(ctx context.Context) (int, error) {
	s.scans++
	return 42, nil
}

func healthStatus(t *testing.T, h *Handler, path string) HealthResponse {
	t.Helper()
	r := gin.New()
	r.GET("/health", h.HealthCheck)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthCheckSkipsScanByDefault(t *testing.T) {
	store := &scanStore{}
	h := NewHandler(config.Default(), store)

	resp := healthStatus(t, h, "/health")
	require.NotNil(t, resp.Cache)
	assert.Equal(t, cache.SizeUnknown, resp.Cache.Size)
	assert.InDelta(t, 0.75, resp.Cache.HitRatio, 1e-9)
	assert.Zero(t, store.scans)

	resp = healthStatus(t, h, "/health?detail=true")
	assert.Equal(t, 42, resp.Cache.Size)
	assert.Equal(t, 1, store.scans)
}

func TestHealthCheckWithoutCache(t *testing.T) {
	resp := healthStatus(t, NewHandler(config.Default(), nil), "/health")
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Cache)
}
