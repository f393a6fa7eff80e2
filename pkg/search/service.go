// Package search 实现混合检索流水线：
// 属性过滤提取 -> SQL 候选选取（带全量回退）-> 向量相似度排名。
package search

import (
	"context"
	"fmt"

	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/queryfilter"
)

// TextEmbedder 查询文本的向量化能力，embedding.Embedder 的窄视图
type TextEmbedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Service 检索编排器，将各阶段串成一次请求/响应周期
type Service struct {
	store     Store
	extractor *queryfilter.Extractor
	embedder  TextEmbedder
}

// NewService 创建检索编排器
func NewService(store Store, extractor *queryfilter.Extractor, embedder TextEmbedder) *Service {
	return &Service{store: store, extractor: extractor, embedder: embedder}
}

// Response 一次检索的结果：提取出的过滤条件 + 按相似度降序的候选列表
type Response struct {
	Filters map[string]string
	Results []Result
}

// Search 执行一次检索。
// 候选集为空时立即返回空结果，不调用嵌入服务；
// 任一阶段失败直接向上传播，编排器内部不做重试。
func (s *Service) Search(ctx context.Context, query string) (*Response, error) {
	if query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	filters := s.extractor.Extract(query)

	candidates, err := SelectCandidates(ctx, s.store, filters)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &Response{Filters: filters, Results: []Result{}}, nil
	}

	queryVector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	return &Response{
		Filters: filters,
		Results: Rank(queryVector, candidates),
	}, nil
}
