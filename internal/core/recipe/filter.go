package recipe

import (
	"fmt"
	"strings"

	"recipe-search/internal/core/keywords"
)

// Diet 飲食篩選條件
type Diet string

const (
	DietAll           Diet = "all"
	DietVegetarian    Diet = "vegetarian"
	DietNonVegetarian Diet = "non_vegetarian"
)

// ParseDiet 解析飲食條件，空字串視為 all
func ParseDiet(s string) (Diet, error) {
	switch Diet(strings.ToLower(strings.TrimSpace(s))) {
	case "", DietAll:
		return DietAll, nil
	case DietVegetarian, "veg":
		return DietVegetarian, nil
	case DietNonVegetarian, "non-vegetarian", "non-veg", "nonveg":
		return DietNonVegetarian, nil
	default:
		return "", fmt.Errorf("unknown diet %q", s)
	}
}

// IsVegetarian 名稱不含任何葷食關鍵字且至少含一個素食關鍵字才算素食
func IsVegetarian(name string, lists *keywords.Allowlists) bool {
	if lists.NonVegetarian.Any(name) {
		return false
	}
	return lists.Vegetarian.Any(name)
}

func (d Diet) matches(name string, lists *keywords.Allowlists) bool {
	switch d {
	case DietVegetarian:
		return IsVegetarian(name, lists)
	case DietNonVegetarian:
		return !IsVegetarian(name, lists)
	default:
		return true
	}
}

// FilterByDiet 依飲食條件篩選記錄，保持順序
func FilterByDiet(records []RecipeRecord, diet Diet, lists *keywords.Allowlists) []RecipeRecord {
	if diet == DietAll || diet == "" {
		return records
	}
	out := make([]RecipeRecord, 0, len(records))
	for _, rec := range records {
		if diet.matches(rec.Name, lists) {
			out = append(out, rec)
		}
	}
	return out
}

// FilterScoredByDiet 依飲食條件篩選已計分記錄，保持順序
func FilterScoredByDiet(records []ScoredRecord, diet Diet, lists *keywords.Allowlists) []ScoredRecord {
	if diet == DietAll || diet == "" {
		return records
	}
	out := make([]ScoredRecord, 0, len(records))
	for _, rec := range records {
		if diet.matches(rec.Name, lists) {
			out = append(out, rec)
		}
	}
	return out
}

// Intersect 保留 a 中 id 也出現在 b 的記錄，順序依 a
func Intersect(a, b []RecipeRecord) []RecipeRecord {
	ids := NewIDSet(b)
	out := make([]RecipeRecord, 0, len(a))
	for _, rec := range a {
		if ids.Has(rec.ID) {
			out = append(out, rec)
		}
	}
	return out
}
