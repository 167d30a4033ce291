package cache

import (
	"context"
	"fmt"

	"recipe-search/internal/infrastructure/config"
)

// Store 閘道回應快取
// Get 只有在先前 Set 過且未超過 TTL 時才命中；Set 一律覆寫並刷新時間戳
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context) error
	Stats() Stats
	Close() error
}

// Sizer 需要額外成本才能計算鍵數量的快取，只在明確要求時呼叫
type Sizer interface {
	Size(ctx context.Context) (int, error)
}

// SizeUnknown Stats.Size 未計算時的值
const SizeUnknown = -1

// Stats 快取統計
type Stats struct {
	Backend   string `json:"backend"`
	Size      int    `json:"size"`
	Hits      int64  `json:"hits"`
	Misses    int64  `json:"misses"`
	Evictions int64  `json:"evictions"`
}

// HitRatio 命中率
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Key 產生請求簽章：端點 + 參數
func Key(endpoint, param string) string {
	return fmt.Sprintf("%s:%s", endpoint, param)
}

// NewStore 依設定建立快取；快取關閉時回傳 nil
func NewStore(cfg *config.Config) (Store, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		return NewService(cfg)
	default:
		return NewManager(&cfg.Cache), nil
	}
}
