package search

import (
	"context"
	"fmt"

	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/vecstore"
)

// Store 候选选取所需的存储能力，由 *vecstore.Store 实现
type Store interface {
	FetchAll(ctx context.Context) ([]vecstore.Record, error)
	FetchByAttributes(ctx context.Context, filters vecstore.AttributeFilter) ([]vecstore.Record, error)
}

// SelectCandidates 选取待排名的候选集。
// 先按过滤条件查询；结果为空时（无论是条件为空还是约束过严匹配不到，
// 两种情况走同一条回退路径）退回全量数据。
// 存储本身为空时返回空集，由调用方短路处理。
func SelectCandidates(ctx context.Context, store Store, filters map[string]string) ([]vecstore.Record, error) {
	records, err := store.FetchByAttributes(ctx, vecstore.AttributeFilter(filters))
	if err != nil {
		return nil, fmt.Errorf("filtered fetch failed: %w", err)
	}
	if len(records) > 0 {
		return records, nil
	}

	records, err = store.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fallback fetch failed: %w", err)
	}
	return records, nil
}
