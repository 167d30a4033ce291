package recipe

import (
	"context"

	"recipe-search/internal/pkg/common"
)

// RecipeRecord 上游回傳的一道菜
type RecipeRecord = common.RecipeRecord

// ScoredRecord 附帶相關度分數的記錄，每次搜尋重新計算
type ScoredRecord struct {
	RecipeRecord
	RelevanceScore float64 `json:"relevance_score"`
}

// SearchStatus 搜尋結果狀態
type SearchStatus string

const (
	SearchStatusResults     SearchStatus = "results"
	SearchStatusSuggestions SearchStatus = "suggestions"
	SearchStatusEmpty       SearchStatus = "empty"
	SearchStatusError       SearchStatus = "error"
)

// SearchOutcome 一次搜尋的完整結果
type SearchOutcome struct {
	Query           string         `json:"query"`
	Status          SearchStatus   `json:"status"`
	Recipes         []ScoredRecord `json:"recipes"`
	Suggestions     []RecipeRecord `json:"suggestions,omitempty"`
	HasResults      bool           `json:"has_results"`
	ShowSuggestions bool           `json:"show_suggestions"`
	Message         string         `json:"message,omitempty"`
}

// BrowseFilter 瀏覽條件，Area 與 Category 都可省略
type BrowseFilter struct {
	Area     string `json:"area"`
	Category string `json:"category"`
	Diet     Diet   `json:"diet"`
}

// Gateway 搜尋流程需要的上游操作
type Gateway interface {
	SearchByIngredient(ctx context.Context, ingredient string) ([]RecipeRecord, error)
	SearchByName(ctx context.Context, name string) ([]RecipeRecord, error)
	FilterByArea(ctx context.Context, area string) ([]RecipeRecord, error)
	FilterByCategory(ctx context.Context, category string) ([]RecipeRecord, error)
	PreferredCuisineRecipes(ctx context.Context) ([]RecipeRecord, error)
	LookupByID(ctx context.Context, id string) (*RecipeRecord, error)
	Random(ctx context.Context) (*RecipeRecord, error)
}
