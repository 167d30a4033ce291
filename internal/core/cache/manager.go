package cache

import (
	"context"
	"sync"
	"time"

	"recipe-search/internal/infrastructure/config"
	"recipe-search/internal/pkg/common"
	"recipe-search/internal/pkg/metrics"

	"go.uber.org/zap"
)

// CacheManager 記憶體內的回應快取
type CacheManager struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	store map[string]cacheEntry
	stats cacheStats
	done  chan struct{}
	once  sync.Once
}

// cacheEntry 緩存條目
type cacheEntry struct {
	value      []byte
	insertedAt time.Time
}

// cacheStats 緩存統計
type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewManager 創建新的緩存管理器
func NewManager(cfg *config.CacheConfig) *CacheManager {
	m := newManager(cfg.TTL, time.Now)

	// 啟動清理過期緩存的協程
	if cfg.CleanupInterval > 0 {
		go m.startCleanup(cfg.CleanupInterval)
	}

	common.LogInfo("快取管理員已初始化",
		zap.Duration("存活時間", cfg.TTL),
		zap.Duration("清理間隔", cfg.CleanupInterval),
	)

	return m
}

func newManager(ttl time.Duration, now func() time.Time) *CacheManager {
	return &CacheManager{
		ttl:   ttl,
		now:   now,
		store: make(map[string]cacheEntry),
		done:  make(chan struct{}),
	}
}

// Get 獲取緩存值
func (m *CacheManager) Get(ctx context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.store[key]
	if !exists {
		m.stats.misses++
		m.recordLookup(key, false)
		return nil, false
	}

	// 已過期視為未命中
	if !m.fresh(entry) {
		delete(m.store, key)
		m.stats.evictions++
		m.stats.misses++
		m.recordLookup(key, false)
		return nil, false
	}

	m.stats.hits++
	m.recordLookup(key, true)
	return entry.value, true
}

// Set 設置緩存值
func (m *CacheManager) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store[key] = cacheEntry{
		value:      value,
		insertedAt: m.now(),
	}

	common.LogDebug("快取已儲存", zap.String("鍵", key))
	return nil
}

// Clear 清空所有緩存
func (m *CacheManager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.evictions += int64(len(m.store))
	m.store = make(map[string]cacheEntry)
	return nil
}

// fresh 條目年齡小於 TTL 才算有效
func (m *CacheManager) fresh(entry cacheEntry) bool {
	return m.now().Sub(entry.insertedAt) < m.ttl
}

func (m *CacheManager) recordLookup(key string, hit bool) {
	if hit {
		metrics.CacheLookups.WithLabelValues(config.CacheBackendMemory, "hit").Inc()
		common.LogCacheHit(config.CacheBackendMemory, key)
		return
	}
	metrics.CacheLookups.WithLabelValues(config.CacheBackendMemory, "miss").Inc()
	common.LogCacheMiss(config.CacheBackendMemory, key)
}

// startCleanup 啟動清理過期緩存的協程
func (m *CacheManager) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup()
		case <-m.done:
			return
		}
	}
}

// cleanup 清理過期的緩存
func (m *CacheManager) cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for key, entry := range m.store {
		if !m.fresh(entry) {
			delete(m.store, key)
			count++
		}
	}
	m.stats.evictions += int64(count)

	if count > 0 {
		common.LogInfo("Cleaned up expired cache entries",
			zap.Int("count", count),
			zap.Int64("total_evictions", m.stats.evictions),
			zap.Int("remaining_size", len(m.store)),
		)
	}

	return count
}

// Stats 獲取緩存統計信息
func (m *CacheManager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Stats{
		Backend:   config.CacheBackendMemory,
		Size:      len(m.store),
		Hits:      m.stats.hits,
		Misses:    m.stats.misses,
		Evictions: m.stats.evictions,
	}
}

// Close 關閉緩存管理器
func (m *CacheManager) Close() error {
	m.once.Do(func() { close(m.done) })

	m.mu.Lock()
	defer m.mu.Unlock()

	m.store = make(map[string]cacheEntry)
	common.LogInfo("快取管理員已關閉",
		zap.Int64("命中次數", m.stats.hits),
		zap.Int64("未命中次數", m.stats.misses),
		zap.Int64("淘汰次數", m.stats.evictions),
	)
	return nil
}
