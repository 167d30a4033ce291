package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"recipe-search/internal/infrastructure/config"
	"recipe-search/internal/pkg/common"
	"recipe-search/internal/pkg/metrics"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const keyPrefix = "recipe:gateway:"

// Service Redis 快取服務，過期交給 Redis TTL 處理
type Service struct {
	client *redis.Client
	ttl    time.Duration
	hits   atomic.Int64
	misses atomic.Int64
}

// NewService 創建緩存服務
func NewService(cfg *config.Config) (*Service, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// 測試連接
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis 快取已連線",
		zap.String("addr", cfg.Redis.Addr),
		zap.Duration("ttl", cfg.Cache.TTL),
	)

	return newServiceWithClient(client, cfg.Cache.TTL), nil
}

func newServiceWithClient(client *redis.Client, ttl time.Duration) *Service {
	return &Service{client: client, ttl: ttl}
}

// Get 獲取緩存
func (s *Service) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			common.LogWarn("讀取 Redis 快取失敗", zap.String("key", key), zap.Error(err))
		}
		s.misses.Add(1)
		metrics.CacheLookups.WithLabelValues(config.CacheBackendRedis, "miss").Inc()
		common.LogCacheMiss(config.CacheBackendRedis, key)
		return nil, false
	}

	s.hits.Add(1)
	metrics.CacheLookups.WithLabelValues(config.CacheBackendRedis, "hit").Inc()
	common.LogCacheHit(config.CacheBackendRedis, key)
	return data, true
}

// Set 設置緩存
func (s *Service) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, keyPrefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Clear 刪除所有閘道快取鍵
func (s *Service) Clear(ctx context.Context) error {
	keys, err := s.keys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

func (s *Service) keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan cache keys: %w", err)
	}
	return keys, nil
}

// Stats 獲取緩存統計信息；鍵數量需掃描，改由 Size 取得
func (s *Service) Stats() Stats {
	return Stats{
		Backend: config.CacheBackendRedis,
		Size:    SizeUnknown,
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
	}
}

// Size 掃描並計算閘道快取鍵數量
func (s *Service) Size(ctx context.Context) (int, error) {
	keys, err := s.keys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Close 關閉 Redis 連線
func (s *Service) Close() error {
	return s.client.Close()
}
