package recipe

import (
	"sort"

	"recipe-search/internal/core/keywords"
)

// DefaultSuggestionLimit 建議清單預設上限
const DefaultSuggestionLimit = 12

// Suggester 搜尋沒有結果時的建議清單
type Suggester struct {
	lists *keywords.Allowlists
	limit int
}

// NewSuggester 創建建議器，limit 不大於 0 時使用預設值
func NewSuggester(lists *keywords.Allowlists, limit int) *Suggester {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	return &Suggester{lists: lists, limit: limit}
}

// Suggest 熱門菜色優先，其次依料理關鍵字數量遞減，同分保持原順序，最多回傳 limit 筆
func (s *Suggester) Suggest(records []RecipeRecord) []RecipeRecord {
	type ranked struct {
		rec      RecipeRecord
		popular  bool
		keywords int
	}

	items := make([]ranked, len(records))
	for i, rec := range records {
		items[i] = ranked{
			rec:      rec,
			popular:  s.lists.Popular.Any(rec.Name),
			keywords: s.lists.Cuisine.Count(rec.Name),
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].popular != items[j].popular {
			return items[i].popular
		}
		return items[i].keywords > items[j].keywords
	})

	if len(items) > s.limit {
		items = items[:s.limit]
	}

	out := make([]RecipeRecord, len(items))
	for i, item := range items {
		out[i] = item.rec
	}
	return out
}
