package recipe

import (
	"context"
	"fmt"
	"sort"

	"recipe-search/internal/pkg/common"
	"recipe-search/internal/pkg/metrics"

	"github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"
)

// callResult 單一呼叫的結果，Err 不為 nil 時 Records 不使用
type callResult struct {
	Records []RecipeRecord
	Err     error
}

// Merger 並發呼叫閘道並合併、排序結果
type Merger struct {
	gateway Gateway
	scorer  *Scorer
}

// NewMerger 創建合併器
func NewMerger(gateway Gateway, scorer *Scorer) *Merger {
	return &Merger{gateway: gateway, scorer: scorer}
}

// Rank 執行計畫中的所有呼叫，等全部結束後依 id 合併（取最高分）並依分數遞減穩定排序
// 全部呼叫都失敗時回傳 ErrSearchFailed
func (m *Merger) Rank(ctx context.Context, plan *SearchPlan) ([]ScoredRecord, error) {
	calls := BuildCalls(plan)
	metrics.SearchSubcalls.Observe(float64(len(calls)))

	mapper := iter.Mapper[Call, callResult]{MaxGoroutines: len(calls)}
	results := mapper.Map(calls, func(call *Call) callResult {
		records, err := m.dispatch(ctx, *call)
		return callResult{Records: records, Err: err}
	})

	return m.merge(plan, calls, results)
}

// merge 依計畫順序處理結果；同 id 只保留第一次出現的欄位，分數取最大值
func (m *Merger) merge(plan *SearchPlan, calls []Call, results []callResult) ([]ScoredRecord, error) {
	var (
		merged   []ScoredRecord
		index    = make(map[string]int)
		failures int
		lastErr  error
	)
	for i, res := range results {
		call := calls[i]
		if res.Err != nil {
			failures++
			lastErr = res.Err
			common.LogWarn("子搜尋失敗，略過",
				zap.String("kind", string(call.Kind)),
				zap.String("tier", string(call.Tier)),
				zap.String("param", call.Param),
				zap.Error(res.Err),
			)
			continue
		}

		for _, rec := range res.Records {
			score := m.scorer.Score(rec, plan) * call.Weight
			if pos, ok := index[rec.ID]; ok {
				if score > merged[pos].RelevanceScore {
					merged[pos].RelevanceScore = score
				}
				continue
			}
			index[rec.ID] = len(merged)
			merged = append(merged, ScoredRecord{RecipeRecord: rec, RelevanceScore: score})
		}
	}

	if len(calls) > 0 && failures == len(calls) {
		return nil, common.Wrap(common.ErrSearchFailed, lastErr)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].RelevanceScore > merged[j].RelevanceScore
	})

	return merged, nil
}

func (m *Merger) dispatch(ctx context.Context, call Call) ([]RecipeRecord, error) {
	switch call.Kind {
	case CallIngredient:
		return m.gateway.SearchByIngredient(ctx, call.Param)
	case CallName:
		return m.gateway.SearchByName(ctx, call.Param)
	default:
		return nil, fmt.Errorf("unknown call kind %q", call.Kind)
	}
}
