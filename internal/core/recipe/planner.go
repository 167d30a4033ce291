package recipe

import (
	"strings"
	"unicode/utf8"

	"recipe-search/internal/pkg/common"
)

// 各層呼叫的權重
const (
	WeightFullQuery     = 3.0
	WeightOriginalQuery = 2.5
	WeightTerm          = 1.0
)

// minTermLength 單詞長度需大於此值才會單獨搜尋
const minTermLength = 2

// SearchPlan 正規化後的搜尋字串
type SearchPlan struct {
	Original   string   `json:"original"`
	Normalized string   `json:"normalized"`
	Terms      []string `json:"terms"`
}

// Plan 將原始輸入轉成搜尋計畫，去除空白後為空字串時回傳 ErrInvalidQuery
func Plan(raw string) (*SearchPlan, error) {
	original := strings.TrimSpace(raw)
	if original == "" {
		return nil, common.ErrInvalidQuery
	}

	normalized := strings.ToLower(original)
	return &SearchPlan{
		Original:   original,
		Normalized: normalized,
		Terms:      strings.Fields(normalized),
	}, nil
}

// CallKind 閘道呼叫種類
type CallKind string

const (
	CallIngredient CallKind = "ingredient"
	CallName       CallKind = "name"
)

// CallTier 呼叫所屬層級
type CallTier string

const (
	TierFullQuery     CallTier = "full"
	TierOriginalQuery CallTier = "original"
	TierTerm          CallTier = "term"
)

// Call 一次計畫好的閘道呼叫
type Call struct {
	Kind   CallKind
	Tier   CallTier
	Param  string
	Weight float64
}

func callPair(tier CallTier, param string, weight float64) []Call {
	return []Call{
		{Kind: CallIngredient, Tier: tier, Param: param, Weight: weight},
		{Kind: CallName, Tier: tier, Param: param, Weight: weight},
	}
}

// BuildCalls 依計畫列出所有閘道呼叫，順序即合併時的處理順序
func BuildCalls(plan *SearchPlan) []Call {
	calls := callPair(TierFullQuery, plan.Normalized, WeightFullQuery)

	if plan.Original != plan.Normalized {
		calls = append(calls, callPair(TierOriginalQuery, plan.Original, WeightOriginalQuery)...)
	}

	if len(plan.Terms) > 1 {
		for _, term := range plan.Terms {
			if utf8.RuneCountInString(term) > minTermLength {
				calls = append(calls, callPair(TierTerm, term, WeightTerm)...)
			}
		}
	}

	return calls
}
