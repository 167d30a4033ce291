package recipe

import (
	"strings"

	"recipe-search/internal/core/keywords"
)

// 計分常數
const (
	scoreFullPhrase     = 10.0
	scoreTermInName     = 5.0
	scoreTermInArea     = 2.0
	scoreTermInCategory = 2.0
	scorePrefix         = 3.0
	scoreCuisineBase    = 2.0
	scoreCuisinePerKW   = 1.5
	scoreAuthenticPerKW = 2.0
	scoreRegionalPerKW  = 1.5
)

// Scorer 計算記錄對搜尋計畫的相關度
type Scorer struct {
	lists *keywords.Allowlists
}

// NewScorer 創建計分器
func NewScorer(lists *keywords.Allowlists) *Scorer {
	return &Scorer{lists: lists}
}

// Score 未加權的相關度，所有項目皆為加分，結果不會小於 0
func (s *Scorer) Score(rec RecipeRecord, plan *SearchPlan) float64 {
	name := strings.ToLower(rec.Name)
	area := strings.ToLower(rec.Area)
	category := strings.ToLower(rec.Category)

	score := 0.0
	if strings.Contains(name, plan.Normalized) {
		score += scoreFullPhrase
	}

	prefix := strings.HasPrefix(name, plan.Normalized)
	for _, term := range plan.Terms {
		if strings.Contains(name, term) {
			score += scoreTermInName
		}
		if strings.Contains(area, term) {
			score += scoreTermInArea
		}
		if strings.Contains(category, term) {
			score += scoreTermInCategory
		}
		if strings.HasPrefix(name, term) {
			prefix = true
		}
	}
	if prefix {
		score += scorePrefix
	}

	if k := s.lists.Cuisine.Count(name); k > 0 {
		score += scoreCuisineBase
		if k > 1 {
			score += float64(k) * scoreCuisinePerKW
		}
		score += float64(s.lists.Authentic.Count(name)) * scoreAuthenticPerKW
	}

	score += float64(s.lists.Regional.CountAny(name, area)) * scoreRegionalPerKW

	return score
}
