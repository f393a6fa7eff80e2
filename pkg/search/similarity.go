package search

import "math"

// CosineSimilarity 余弦相似度：点积除以模长乘积，取值范围 [-1, 1]。
// 任一向量模长为零时按约定返回 0.0，而不是 NaN 或错误。
// 纯函数，不修改输入向量。
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}

	denom := norm(a) * norm(b)
	if denom == 0 {
		return 0.0
	}
	return dot / denom
}

func norm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}
