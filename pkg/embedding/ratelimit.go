package embedding

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimited 对嵌入调用做限流的包装器，批量入库时避免压垮编码服务
type RateLimited struct {
	inner   Embedder
	limiter *rate.Limiter
}

// NewRateLimited 创建限流包装器，perSec 为每秒允许的嵌入调用数
func NewRateLimited(inner Embedder, perSec float64) *RateLimited {
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(perSec), 1),
	}
}

// EmbedText 等待限流令牌后委托给内层实现
func (r *RateLimited) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.EmbedText(ctx, text)
}

// EmbedImage 等待限流令牌后委托给内层实现
func (r *RateLimited) EmbedImage(ctx context.Context, image []byte) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.EmbedImage(ctx, image)
}

// Dimensions 返回内层实现的向量维度
func (r *RateLimited) Dimensions() int { return r.inner.Dimensions() }
