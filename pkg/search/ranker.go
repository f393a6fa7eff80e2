package search

import (
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/vecstore"
)

// Result 候选记录与其相似度得分
type Result struct {
	Image      vecstore.Image
	Similarity float64
}

// Rank 对每个候选计算与查询向量的余弦相似度并按得分降序返回。
// 逐候选打分相互独立，这里并行计算；最终使用稳定排序，
// 平分的候选保持输入顺序（即存储层的 id 升序）。
func Rank(query []float32, candidates []vecstore.Record) []Result {
	results := make([]Result, len(candidates))

	// 打分是纯计算，不会失败也无需取消，用零值 Group 即可
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range candidates {
		g.Go(func() error {
			results[i] = Result{
				Image:      candidates[i].Image,
				Similarity: CosineSimilarity(query, candidates[i].Vector),
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	return results
}
