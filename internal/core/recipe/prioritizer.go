package recipe

import (
	"recipe-search/internal/core/keywords"
)

// IDSet 記錄 id 集合
type IDSet map[string]struct{}

// NewIDSet 由記錄建立 id 集合
func NewIDSet(records []RecipeRecord) IDSet {
	set := make(IDSet, len(records))
	for _, rec := range records {
		set[rec.ID] = struct{}{}
	}
	return set
}

// Has 是否包含 id
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Prioritize 穩定三層分組：偏好料理 > 名稱含料理關鍵字 > 其他，各層保持原順序
func Prioritize(records []ScoredRecord, preferred IDSet, cuisine keywords.Set) []ScoredRecord {
	var bandA, bandB, bandC []ScoredRecord
	for _, rec := range records {
		switch {
		case preferred.Has(rec.ID):
			bandA = append(bandA, rec)
		case cuisine.Any(rec.Name):
			bandB = append(bandB, rec)
		default:
			bandC = append(bandC, rec)
		}
	}

	out := make([]ScoredRecord, 0, len(records))
	out = append(out, bandA...)
	out = append(out, bandB...)
	return append(out, bandC...)
}
