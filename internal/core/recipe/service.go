package recipe

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"recipe-search/internal/core/keywords"
	"recipe-search/internal/infrastructure/config"
	"recipe-search/internal/pkg/common"
	"recipe-search/internal/pkg/metrics"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// Service 食譜搜尋服務
type Service struct {
	gateway   Gateway
	lists     *keywords.Allowlists
	merger    *Merger
	suggester *Suggester
	bias      float64

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewService 創建新的食譜服務
func NewService(gateway Gateway, lists *keywords.Allowlists, cfg *config.SearchConfig) *Service {
	return &Service{
		gateway:   gateway,
		lists:     lists,
		merger:    NewMerger(gateway, NewScorer(lists)),
		suggester: NewSuggester(lists, cfg.SuggestionLimit),
		bias:      cfg.PreferredBias,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Search 執行一次搜尋
// 空白查詢回傳 ErrInvalidQuery；上游全部失敗時回傳 error 狀態的結果而非錯誤
func (s *Service) Search(ctx context.Context, query string, diet Diet) (*SearchOutcome, error) {
	plan, err := Plan(query)
	if err != nil {
		return nil, err
	}

	ranked, err := s.merger.Rank(ctx, plan)
	if err != nil {
		common.LogError("搜尋失敗", zap.String("query", plan.Original), zap.Error(err))
		return s.finish(&SearchOutcome{
			Query:   plan.Original,
			Status:  SearchStatusError,
			Recipes: []ScoredRecord{},
			Message: common.ErrSearchFailed.Message,
		}), nil
	}

	ranked = FilterScoredByDiet(ranked, diet, s.lists)
	if len(ranked) == 0 {
		suggestions := s.Suggestions(ctx)
		outcome := &SearchOutcome{
			Query:   plan.Original,
			Status:  SearchStatusEmpty,
			Recipes: []ScoredRecord{},
		}
		if len(suggestions) > 0 {
			outcome.Status = SearchStatusSuggestions
			outcome.Suggestions = suggestions
			outcome.ShowSuggestions = true
		}
		return s.finish(outcome), nil
	}

	preferred, err := s.gateway.PreferredCuisineRecipes(ctx)
	if err != nil {
		common.LogWarn("取得偏好料理失敗，略過優先排序", zap.Error(err))
		preferred = nil
	}

	return s.finish(&SearchOutcome{
		Query:      plan.Original,
		Status:     SearchStatusResults,
		Recipes:    Prioritize(ranked, NewIDSet(preferred), s.lists.Cuisine),
		HasResults: true,
	}), nil
}

func (s *Service) finish(outcome *SearchOutcome) *SearchOutcome {
	metrics.SearchOutcomes.WithLabelValues(string(outcome.Status)).Inc()
	common.LogInfo("搜尋完成",
		zap.String("query", outcome.Query),
		zap.String("status", string(outcome.Status)),
		zap.Int("results", len(outcome.Recipes)),
		zap.Int("suggestions", len(outcome.Suggestions)),
	)
	return outcome
}

// Suggestions 偏好料理的建議清單；取得失敗時回傳空清單
func (s *Service) Suggestions(ctx context.Context) []RecipeRecord {
	records, err := s.gateway.PreferredCuisineRecipes(ctx)
	if err != nil {
		common.LogWarn("取得建議清單失敗", zap.Error(err))
		return []RecipeRecord{}
	}
	return s.suggester.Suggest(records)
}

// Details 取得單一食譜的完整內容
func (s *Service) Details(ctx context.Context, id string) (*RecipeRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, common.ErrInvalidRequest
	}

	rec, err := s.gateway.LookupByID(ctx, id)
	if err != nil {
		return nil, common.Wrap(common.ErrDetailsUnavailable, err)
	}
	if rec == nil {
		return nil, common.ErrRecipeNotFound
	}
	return rec, nil
}

// Random 隨機推薦一道菜，有 bias 的機率從偏好料理中挑選
func (s *Service) Random(ctx context.Context) (*RecipeRecord, error) {
	if s.roll() < s.bias {
		if rec := s.randomPreferred(ctx); rec != nil {
			return rec, nil
		}
	}

	rec, err := s.gateway.Random(ctx)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, common.ErrRecipeNotFound
	}
	return rec, nil
}

// randomPreferred 從偏好料理挑一道並補齊完整內容，失敗時回傳 nil
func (s *Service) randomPreferred(ctx context.Context) *RecipeRecord {
	records, err := s.gateway.PreferredCuisineRecipes(ctx)
	if err != nil || len(records) == 0 {
		return nil
	}

	picked := records[s.intn(len(records))]
	full, err := s.gateway.LookupByID(ctx, picked.ID)
	if err != nil || full == nil {
		common.LogWarn("無法取得完整內容，回傳摘要", zap.String("id", picked.ID), zap.Error(err))
		return &picked
	}
	return full
}

func (s *Service) roll() float64 {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Float64()
}

func (s *Service) intn(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Intn(n)
}

// Browse 依地區及分類瀏覽，兩者皆有時取交集，都沒有時回傳偏好料理
func (s *Service) Browse(ctx context.Context, filter BrowseFilter) ([]RecipeRecord, error) {
	area := strings.TrimSpace(filter.Area)
	category := strings.TrimSpace(filter.Category)

	var (
		records []RecipeRecord
		err     error
	)
	switch {
	case area != "" && category != "":
		var (
			byArea, byCategory []RecipeRecord
			areaErr, catErr    error
			wg                 conc.WaitGroup
		)
		wg.Go(func() { byArea, areaErr = s.gateway.FilterByArea(ctx, area) })
		wg.Go(func() { byCategory, catErr = s.gateway.FilterByCategory(ctx, category) })
		wg.Wait()
		if areaErr != nil {
			return nil, areaErr
		}
		if catErr != nil {
			return nil, catErr
		}
		records = Intersect(byArea, byCategory)
	case area != "":
		records, err = s.gateway.FilterByArea(ctx, area)
	case category != "":
		records, err = s.gateway.FilterByCategory(ctx, category)
	default:
		records, err = s.gateway.PreferredCuisineRecipes(ctx)
	}
	if err != nil {
		return nil, err
	}

	return FilterByDiet(records, filter.Diet, s.lists), nil
}
