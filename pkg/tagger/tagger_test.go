package tagger

import (
	"context"
	"testing"

	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/taxonomy"
)

// promptEmbedder 按提示文本返回预置向量，统计文本嵌入调用次数
type promptEmbedder struct {
	imageVector []float32
	prompts     map[string][]float32
	textCalls   int
}

func (p *promptEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	p.textCalls++
	if vec, ok := p.prompts[text]; ok {
		return vec, nil
	}
	return []float32{0, 0}, nil
}

func (p *promptEmbedder) EmbedImage(ctx context.Context, image []byte) ([]float32, error) {
	return p.imageVector, nil
}

func (p *promptEmbedder) Dimensions() int { return 2 }

func testTaxonomy() *taxonomy.Taxonomy {
	return &taxonomy.Taxonomy{
		Silhouette: []string{"A-line", "mermaid"},
		Length:     []string{"mini", "floor length"},
		SleeveType: []string{"sleeveless", "long sleeve"},
		Color:      []string{"navy", "red"},
	}
}

func TestClassify(t *testing.T) {
	// 图片向量指向 (1,0)，每个类目第二个标签的提示向量与其对齐
	embedder := &promptEmbedder{
		imageVector: []float32{1, 0},
		prompts: map[string][]float32{
			"a A-line dress":       {0, 1},
			"a mermaid dress":      {1, 0},
			"a mini dress":         {0, 1},
			"a floor length dress": {1, 0.1},
			"a sleeveless dress":   {-1, 0},
			"a long sleeve dress":  {0.9, 0},
			"a navy dress":         {0.2, 1},
			"a red dress":          {1, -0.1},
		},
	}

	z := NewZeroShot(embedder, testTaxonomy())
	attrs, err := z.Classify(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	want := map[string]string{
		taxonomy.CategorySilhouette: "mermaid",
		taxonomy.CategoryLength:     "floor length",
		taxonomy.CategorySleeveType: "long sleeve",
		taxonomy.CategoryColor:      "red",
	}
	for category, label := range want {
		if attrs[category] != label {
			t.Errorf("%s = %q, want %q", category, attrs[category], label)
		}
	}
}

func TestClassify_TieKeepsFirstLabel(t *testing.T) {
	// 两个标签同分时取词表中靠前者
	embedder := &promptEmbedder{
		imageVector: []float32{1, 0},
		prompts: map[string][]float32{
			"a A-line dress":  {1, 0},
			"a mermaid dress": {2, 0}, // 余弦相似度与 (1,0) 相同
		},
	}
	z := NewZeroShot(embedder, testTaxonomy())

	attrs, err := z.Classify(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if attrs[taxonomy.CategorySilhouette] != "A-line" {
		t.Errorf("tie should keep first label, got %q", attrs[taxonomy.CategorySilhouette])
	}
}

func TestClassify_PromptVectorsCached(t *testing.T) {
	embedder := &promptEmbedder{imageVector: []float32{1, 0}, prompts: map[string][]float32{}}
	z := NewZeroShot(embedder, testTaxonomy())
	ctx := context.Background()

	if _, err := z.Classify(ctx, []byte("a")); err != nil {
		t.Fatal(err)
	}
	afterFirst := embedder.textCalls
	if afterFirst != 8 {
		t.Errorf("expected 8 prompt embeddings on first classify, got %d", afterFirst)
	}

	if _, err := z.Classify(ctx, []byte("b")); err != nil {
		t.Fatal(err)
	}
	if embedder.textCalls != afterFirst {
		t.Errorf("prompt vectors not cached: %d calls after second classify", embedder.textCalls)
	}
}

func TestClassify_LabelsFromTaxonomyOnly(t *testing.T) {
	tax := testTaxonomy()
	embedder := &promptEmbedder{imageVector: []float32{0.3, 0.7}, prompts: map[string][]float32{}}
	z := NewZeroShot(embedder, tax)

	attrs, err := z.Classify(context.Background(), []byte("img"))
	if err != nil {
		t.Fatal(err)
	}
	for category, label := range attrs {
		if !tax.Contains(category, label) {
			t.Errorf("label %q not in taxonomy for %q", label, category)
		}
	}
}
