// Package embedding 定义向量嵌入能力及其实现。
// 同一进程生命周期内，相同输入必须产生相同向量，
// 排名结果的可复现性依赖这一点。
package embedding

import "context"

// Embedder 文本与图片的向量嵌入生成器接口。
// 两类输入产出的向量维度一致，由具体编码器决定。
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedImage(ctx context.Context, image []byte) ([]float32, error)
	Dimensions() int
}
