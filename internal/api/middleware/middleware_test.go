package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	r.GET("/ping", ok)
	r.POST("/echo", ok)
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	r.ServeHTTP(w, req)
	return w
}

func TestRecovery(t *testing.T) {
	r := newEngine(Recovery(), Logger())

	w := serve(r, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestBodySizeLimit(t *testing.T) {
	r := newEngine(BodySizeLimit(8))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/echo", `{}`).Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, serve(r, http.MethodPost, "/echo", `{"query":"chicken"}`).Code)
}

func TestRateLimiterPerClient(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2, time.Second, func() time.Time { return now })

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))

	// 其他客戶端不受影響
	assert.True(t, rl.Allow("10.0.0.2"))
	assert.True(t, rl.Allow("10.0.0.2"))

	now = now.Add(500 * time.Millisecond)
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2, time.Second, func() time.Time { return now })

	rl.Allow("10.0.0.1")
	rl.Allow("10.0.0.2")
	assert.Equal(t, 2, rl.clientCount())

	now = now.Add(3 * time.Second)
	assert.True(t, rl.Allow("10.0.0.3"))
	assert.Equal(t, 1, rl.clientCount())
}

func serveFrom(r http.Handler, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":40000"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newEngine(RateLimit(1, time.Hour))

	assert.Equal(t, http.StatusOK, serveFrom(r, "10.0.0.1").Code)
	w := serveFrom(r, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "TOO_MANY_REQUESTS")

	// 另一個 IP 仍可通過
	assert.Equal(t, http.StatusOK, serveFrom(r, "10.0.0.2").Code)
}

func TestDeduplicationReplaysResponse(t *testing.T) {
	calls := 0
	r := gin.New()
	r.Use(Deduplication(time.Minute))
	r.POST("/search", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"call": calls})
	})
	r.POST("/fail", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusServiceUnavailable, gin.H{"call": calls})
	})

	first := serve(r, http.MethodPost, "/search", `{"query":"dal"}`)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Empty(t, first.Header().Get(HeaderDeduplicated))

	second := serve(r, http.MethodPost, "/search", `{"query":"dal"}`)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get(HeaderDeduplicated))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Contains(t, second.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, 1, calls)

	// 不同請求體照常處理
	assert.JSONEq(t, `{"call":2}`, serve(r, http.MethodPost, "/search", `{"query":"pho"}`).Body.String())

	// 失敗回應不重播
	assert.Equal(t, http.StatusServiceUnavailable, serve(r, http.MethodPost, "/fail", `{}`).Code)
	w := serve(r, http.MethodPost, "/fail", `{}`)
	assert.Empty(t, w.Header().Get(HeaderDeduplicated))
	assert.Equal(t, 4, calls)
}

func TestDeduplicationIgnoresGET(t *testing.T) {
	r := newEngine(Deduplication(time.Minute))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ping", "").Code)
	w := serve(r, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(HeaderDeduplicated))
}

func TestDeduplicatorWindowExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d := NewDeduplicator(time.Second)
	d.now = func() time.Time { return now }

	_, ok := d.lookup("a")
	assert.False(t, ok)

	// 處理中的請求不重播
	_, ok = d.lookup("a")
	assert.False(t, ok)

	d.store("a", http.StatusOK, "application/json", []byte(`{}`))
	entry, ok := d.lookup("a")
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, entry.status)

	now = now.Add(2 * time.Second)
	_, ok = d.lookup("a")
	assert.False(t, ok)
}
