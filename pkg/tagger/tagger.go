// Package tagger 基于零样本提示的属性分类。
// 对每个类目，把候选标签套入提示模板生成文本向量，
// 与图片向量比较余弦相似度，取最高分标签。
package tagger

import (
	"context"
	"fmt"
	"sync"

	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/embedding"
	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/search"
	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/taxonomy"
)

// promptFormat 零样本分类的提示模板
const promptFormat = "a %s dress"

// ZeroShot 零样本属性分类器。
// 提示向量与输入图片无关，进程内只计算一次并缓存。
type ZeroShot struct {
	embedder embedding.Embedder
	tax      *taxonomy.Taxonomy

	mu         sync.Mutex
	promptVecs map[string][][]float32
}

// NewZeroShot 创建零样本分类器
func NewZeroShot(embedder embedding.Embedder, tax *taxonomy.Taxonomy) *ZeroShot {
	return &ZeroShot{
		embedder:   embedder,
		tax:        tax,
		promptVecs: make(map[string][][]float32),
	}
}

// Classify 推断图片的全部属性，返回类目到标签的映射。
// 产出标签只会来自词表；同分时取词表中靠前的标签。
func (z *ZeroShot) Classify(ctx context.Context, image []byte) (map[string]string, error) {
	imageVector, err := z.embedder.EmbedImage(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("failed to embed image: %w", err)
	}

	attributes := make(map[string]string)
	for _, category := range z.tax.Categories() {
		labels := z.tax.Labels(category)
		prompts, err := z.promptVectors(ctx, category, labels)
		if err != nil {
			return nil, err
		}

		best := 0
		bestScore := search.CosineSimilarity(imageVector, prompts[0])
		for i := 1; i < len(prompts); i++ {
			score := search.CosineSimilarity(imageVector, prompts[i])
			if score > bestScore {
				best = i
				bestScore = score
			}
		}
		attributes[category] = labels[best]
	}
	return attributes, nil
}

// promptVectors 返回类目下每个标签的提示向量，首次访问时计算
func (z *ZeroShot) promptVectors(ctx context.Context, category string, labels []string) ([][]float32, error) {
	z.mu.Lock()
	defer z.mu.Unlock()

	if vecs, ok := z.promptVecs[category]; ok {
		return vecs, nil
	}

	vecs := make([][]float32, 0, len(labels))
	for _, label := range labels {
		vec, err := z.embedder.EmbedText(ctx, fmt.Sprintf(promptFormat, label))
		if err != nil {
			return nil, fmt.Errorf("failed to embed prompt for %q: %w", label, err)
		}
		vecs = append(vecs, vec)
	}
	z.promptVecs[category] = vecs
	return vecs, nil
}
