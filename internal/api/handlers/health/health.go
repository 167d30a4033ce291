package health

import (
	"net/http"
	"runtime"
	"time"

	"recipe-search/internal/core/cache"
	"recipe-search/internal/infrastructure/config"
	"recipe-search/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Cache     *CacheStatus           `json:"cache,omitempty"`
}

// CacheStatus 快取狀態
type CacheStatus struct {
	cache.Stats
	HitRatio float64 `json:"hit_ratio"`
}

// Handler 健康檢查處理程序
type Handler struct {
	cfg   *config.Config
	store cache.Store
}

// NewHandler 創建健康檢查處理程序，store 可為 nil
func NewHandler(cfg *config.Config, store cache.Store) *Handler {
	return &Handler{cfg: cfg, store: store}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.cfg.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	if h.store != nil {
		stats := h.store.Stats()
		// 需掃描的鍵數量只在 detail=true 時計算
		if sizer, ok := h.store.(cache.Sizer); ok && c.Query("detail") == "true" {
			if size, err := sizer.Size(c.Request.Context()); err == nil {
				stats.Size = size
			} else {
				common.LogWarn("計算快取大小失敗", zap.Error(err))
			}
		}
		response.Cache = &CacheStatus{Stats: stats, HitRatio: stats.HitRatio()}
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器
func (h *Handler) ReadinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

// ClearCache 清空回應快取
func (h *Handler) ClearCache(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{"status": "disabled"})
		return
	}
	if err := h.store.Clear(c.Request.Context()); err != nil {
		common.LogError("清空快取失敗", zap.Error(err))
		ce := common.Wrap(common.ErrServiceUnavailable, err)
		c.AbortWithStatusJSON(ce.Status, common.ErrorResponse{Code: ce.Code, Message: ce.Message})
		return
	}
	common.LogInfo("快取已清空")
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
