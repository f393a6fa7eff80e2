package embedding

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/embedding/openai"
)

// OpenAIEmbedder 基于 OpenAI 的文本嵌入生成器。
// 仅支持文本查询，图片入库仍需 CLIP 服务；
// 只在离线完成图片入库、线上只做文本检索的部署形态下使用。
type OpenAIEmbedder struct {
	embedder   *openai.Embedder
	dimensions int
}

// NewOpenAIEmbedder 创建 OpenAI 嵌入生成器
func NewOpenAIEmbedder(ctx context.Context, config *openai.EmbeddingConfig) (*OpenAIEmbedder, error) {
	emb, err := openai.NewEmbedder(ctx, config)
	if err != nil {
		return nil, err
	}

	// 默认维度，根据模型决定
	dims := 1536 // text-embedding-3-small / text-embedding-ada-002
	if config.Model == "text-embedding-3-large" {
		dims = 3072
	}
	if config.Dimensions != nil {
		dims = *config.Dimensions
	}

	return &OpenAIEmbedder{embedder: emb, dimensions: dims}, nil
}

// EmbedText 生成文本向量
func (e *OpenAIEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	res, err := e.embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	vec := make([]float32, len(res[0]))
	for i, v := range res[0] {
		vec[i] = float32(v)
	}
	return vec, nil
}

// EmbedImage OpenAI 嵌入不支持图片输入
func (e *OpenAIEmbedder) EmbedImage(ctx context.Context, image []byte) ([]float32, error) {
	return nil, fmt.Errorf("openai embedder does not support image input")
}

// Dimensions 返回向量维度
func (e *OpenAIEmbedder) Dimensions() int { return e.dimensions }
