// Package gateway 上游食譜 API（TheMealDB）客戶端
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"recipe-search/internal/core/cache"
	"recipe-search/internal/infrastructure/config"
	"recipe-search/internal/pkg/common"
	"recipe-search/internal/pkg/metrics"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Endpoint 上游端點樣板
type Endpoint struct {
	Name  string
	Path  string
	Param string
}

// 端點樣板
var (
	EndpointIngredient = Endpoint{Name: "ingredient", Path: "/filter.php", Param: "i"}
	EndpointName       = Endpoint{Name: "name", Path: "/search.php", Param: "s"}
	EndpointArea       = Endpoint{Name: "area", Path: "/filter.php", Param: "a"}
	EndpointCategory   = Endpoint{Name: "category", Path: "/filter.php", Param: "c"}
	EndpointLookup     = Endpoint{Name: "lookup", Path: "/lookup.php", Param: "i"}
	EndpointRandom     = Endpoint{Name: "random", Path: "/random.php"}
)

// BreakerConfig 斷路器設定
type BreakerConfig struct {
	Name         string
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

// DefaultBreakerConfig 預設斷路器設定
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:         "recipe-gateway",
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// Client 食譜閘道客戶端
type Client struct {
	http      *resty.Client
	cache     cache.Store
	breaker   *gobreaker.CircuitBreaker[[]byte]
	preferred string
}

// NewClient 創建閘道客戶端；store 為 nil 時不使用快取
func NewClient(cfg *config.GatewayConfig, store cache.Store) *Client {
	return NewClientWithBreaker(cfg, store, DefaultBreakerConfig())
}

// NewClientWithBreaker 以指定斷路器設定創建閘道客戶端
func NewClientWithBreaker(cfg *config.GatewayConfig, store cache.Store, bc BreakerConfig) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	c := &Client{
		http:      httpClient,
		cache:     store,
		preferred: cfg.PreferredCuisine,
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        bc.Name,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bc.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= bc.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			common.LogWarn("閘道斷路器狀態變更",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	metrics.CircuitBreakerState.WithLabelValues(bc.Name).Set(float64(gobreaker.StateClosed))

	return c
}

// PreferredCuisine 偏好料理的地區名稱
func (c *Client) PreferredCuisine() string {
	return c.preferred
}

// SearchByIngredient 以食材搜尋
func (c *Client) SearchByIngredient(ctx context.Context, ingredient string) ([]common.RecipeRecord, error) {
	return c.fetch(ctx, EndpointIngredient, ingredient)
}

// SearchByName 以菜名搜尋
func (c *Client) SearchByName(ctx context.Context, name string) ([]common.RecipeRecord, error) {
	return c.fetch(ctx, EndpointName, name)
}

// FilterByArea 以地區篩選
func (c *Client) FilterByArea(ctx context.Context, area string) ([]common.RecipeRecord, error) {
	return c.fetch(ctx, EndpointArea, area)
}

// FilterByCategory 以分類篩選
func (c *Client) FilterByCategory(ctx context.Context, category string) ([]common.RecipeRecord, error) {
	return c.fetch(ctx, EndpointCategory, category)
}

// PreferredCuisineRecipes 取得偏好料理清單
func (c *Client) PreferredCuisineRecipes(ctx context.Context) ([]common.RecipeRecord, error) {
	return c.fetch(ctx, EndpointArea, c.PreferredCuisine())
}

// LookupByID 以 id 查詢完整記錄；找不到時回傳 nil
func (c *Client) LookupByID(ctx context.Context, id string) (*common.RecipeRecord, error) {
	records, err := c.fetch(ctx, EndpointLookup, id)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// Random 隨機取得一道菜，結果不快取
func (c *Client) Random(ctx context.Context) (*common.RecipeRecord, error) {
	records, err := c.fetch(ctx, EndpointRandom, "")
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (c *Client) cacheable(ep Endpoint) bool {
	return c.cache != nil && ep != EndpointRandom
}

// fetch 先查快取，未命中時經斷路器呼叫上游並寫回快取
func (c *Client) fetch(ctx context.Context, ep Endpoint, value string) ([]common.RecipeRecord, error) {
	key := cache.Key(ep.Name, value)

	if c.cacheable(ep) {
		if data, ok := c.cache.Get(ctx, key); ok {
			if records, err := decodeMeals(data); err == nil {
				return records, nil
			}
			common.LogWarn("快取內容無法解析，重新請求", zap.String("key", key))
		}
	}

	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, ep, value)
	})
	duration := time.Since(start)
	metrics.GatewayDuration.WithLabelValues(ep.Name).Observe(duration.Seconds())

	if err != nil {
		result := "failure"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = "rejected"
		}
		metrics.GatewayRequests.WithLabelValues(ep.Name, result).Inc()
		common.LogGatewayCall(ep.Name, value, duration, err)
		return nil, common.Wrap(common.ErrGatewayCallFailed, err)
	}

	records, err := decodeMeals(body)
	if err != nil {
		metrics.GatewayRequests.WithLabelValues(ep.Name, "failure").Inc()
		common.LogGatewayCall(ep.Name, value, duration, err)
		return nil, common.Wrap(common.ErrGatewayCallFailed, err)
	}

	metrics.GatewayRequests.WithLabelValues(ep.Name, "success").Inc()
	common.LogGatewayCall(ep.Name, value, duration, nil)

	if c.cacheable(ep) {
		if err := c.cache.Set(ctx, key, body); err != nil {
			common.LogWarn("寫入快取失敗", zap.String("key", key), zap.Error(err))
		}
	}

	return records, nil
}

func (c *Client) do(ctx context.Context, ep Endpoint, value string) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if ep.Param != "" {
		req.SetQueryParam(ep.Param, value)
	}

	resp, err := req.Get(ep.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", ep.Name, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("recipe API returned status %d for %s", resp.StatusCode(), ep.Name)
	}

	// 先驗證信封格式，壞掉的回應計入斷路器失敗
	if _, err := decodeMeals(resp.Body()); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// envelope 上游回應信封
type envelope struct {
	Meals json.RawMessage `json:"meals"`
}

// decodeMeals 解析 meals 欄位；null、缺少或非陣列都視為空清單
func decodeMeals(data []byte) ([]common.RecipeRecord, error) {
	var env envelope
	if err := common.ParseJSONBytes(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse recipe response: %w", err)
	}
	if common.IsJSONNull(env.Meals) || !bytes.HasPrefix(bytes.TrimSpace(env.Meals), []byte("[")) {
		return []common.RecipeRecord{}, nil
	}

	var raw []common.RawMeal
	if err := json.Unmarshal(env.Meals, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse meals: %w", err)
	}

	records := make([]common.RecipeRecord, 0, len(raw))
	for _, meal := range raw {
		rec := meal.ToRecord()
		if rec.ID == "" || rec.Name == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
