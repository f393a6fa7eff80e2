package search

import (
	"math"
	"testing"

	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/vecstore"
)

func TestCosineSimilarity_Symmetry(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{-4, 5, 0.5}

	if CosineSimilarity(a, b) != CosineSimilarity(b, a) {
		t.Error("cosine similarity should be symmetric")
	}
}

func TestCosineSimilarity_SelfIsOne(t *testing.T) {
	a := []float32{0.3, -0.7, 12}
	got := CosineSimilarity(a, a)
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("similarity(a, a) = %v, want 1.0", got)
	}
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	zero := []float32{0, 0, 0}
	b := []float32{1, 2, 3}

	// 零向量的相似度按约定精确为 0.0
	if got := CosineSimilarity(zero, b); got != 0.0 {
		t.Errorf("similarity(zero, b) = %v, want exactly 0.0", got)
	}
	if got := CosineSimilarity(b, zero); got != 0.0 {
		t.Errorf("similarity(b, zero) = %v, want exactly 0.0", got)
	}
	if got := CosineSimilarity(zero, zero); got != 0.0 {
		t.Errorf("similarity(zero, zero) = %v, want exactly 0.0", got)
	}
}

func TestCosineSimilarity_OppositeIsMinusOne(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{-1, 0}
	if got := CosineSimilarity(a, b); math.Abs(got+1.0) > 1e-9 {
		t.Errorf("similarity of opposite vectors = %v, want -1.0", got)
	}
}

func TestCosineSimilarity_DoesNotMutateInputs(t *testing.T) {
	a := []float32{1, 2}
	b := []float32{3, 4}
	CosineSimilarity(a, b)
	if a[0] != 1 || a[1] != 2 || b[0] != 3 || b[1] != 4 {
		t.Error("inputs were mutated")
	}
}

func candidate(id int64, vec []float32) vecstore.Record {
	return vecstore.Record{
		Image:  vecstore.Image{ID: id, Filename: "img.jpg"},
		Vector: vec,
	}
}

func TestRank_DescendingOrder(t *testing.T) {
	query := []float32{1, 0}
	candidates := []vecstore.Record{
		candidate(1, []float32{0, 1}),   // 相似度 0
		candidate(2, []float32{1, 0}),   // 相似度 1
		candidate(3, []float32{1, 1}),   // 相似度 ~0.707
		candidate(4, []float32{-1, 0}),  // 相似度 -1
	}

	results := Rank(query, candidates)

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	wantOrder := []int64{2, 3, 1, 4}
	for i, want := range wantOrder {
		if results[i].Image.ID != want {
			t.Errorf("position %d: got id %d, want %d", i, results[i].Image.ID, want)
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i].Similarity > results[i-1].Similarity {
			t.Error("results not in descending similarity order")
		}
	}
}

func TestRank_StableOnTies(t *testing.T) {
	query := []float32{1, 0}
	// 全部同分，输出必须保持输入（id 升序）顺序
	same := []float32{1, 0}
	candidates := []vecstore.Record{
		candidate(1, same),
		candidate(2, same),
		candidate(3, same),
		candidate(4, same),
		candidate(5, same),
	}

	results := Rank(query, candidates)
	for i, r := range results {
		if r.Image.ID != int64(i+1) {
			t.Fatalf("tie order not stable: position %d has id %d", i, r.Image.ID)
		}
	}
}

func TestRank_ZeroMagnitudeCandidates(t *testing.T) {
	query := []float32{1, 0}
	candidates := []vecstore.Record{
		candidate(1, []float32{0, 0}),
		candidate(2, []float32{0.5, 0}),
	}

	results := Rank(query, candidates)
	if results[0].Image.ID != 2 {
		t.Errorf("non-zero candidate should rank first, got id %d", results[0].Image.ID)
	}
	if results[1].Similarity != 0.0 {
		t.Errorf("zero-magnitude candidate similarity = %v, want 0.0", results[1].Similarity)
	}
}

func TestRank_Empty(t *testing.T) {
	results := Rank([]float32{1}, nil)
	if len(results) != 0 {
		t.Errorf("expected empty results, got %d", len(results))
	}
}
