package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/vecstore"
)

// staticEmbedder 返回固定向量
type staticEmbedder struct {
	vector []float32
}

func (s *staticEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return s.vector, nil
}

func (s *staticEmbedder) EmbedImage(ctx context.Context, image []byte) ([]float32, error) {
	return s.vector, nil
}

func (s *staticEmbedder) Dimensions() int { return len(s.vector) }

// staticTagger 返回固定属性
type staticTagger struct {
	attributes map[string]string
}

func (s *staticTagger) Classify(ctx context.Context, image []byte) (map[string]string, error) {
	return s.attributes, nil
}

func newTestService(t *testing.T) (*Service, *vecstore.Store) {
	t.Helper()
	store, err := vecstore.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Init(context.Background()))

	svc := New(Options{
		Store:    store,
		Embedder: &staticEmbedder{vector: []float32{0.1, 0.2}},
		Tagger: &staticTagger{attributes: map[string]string{
			"silhouette":  "A-line",
			"sleeve_type": "long sleeve",
			"color":       "navy",
			// length 缺失，应落为 Unknown 哨兵值
		}},
		ImagesDir: t.TempDir(),
	})
	return svc, store
}

func imageServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/dress1.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte{0xFF, 0xD8, 0xFF, 0xE0})
	})
	mux.HandleFunc("/dress2.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte{0xFF, 0xD8, 0xFF, 0xE1})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestIngestURL(t *testing.T) {
	svc, store := newTestService(t)
	srv := imageServer(t)
	ctx := context.Background()

	rec, err := svc.IngestURL(ctx, srv.URL+"/dress1.jpg")
	require.NoError(t, err)
	require.Equal(t, "dress1.jpg", rec.Filename)
	require.Equal(t, "navy", rec.Color)
	require.Equal(t, "Unknown", rec.Length)
	require.Positive(t, rec.ID)

	var metadata struct {
		SourceURL  string            `json:"source_url"`
		Attributes map[string]string `json:"attributes"`
	}
	require.NoError(t, json.Unmarshal([]byte(rec.MetadataJSON), &metadata))
	require.Equal(t, srv.URL+"/dress1.jpg", metadata.SourceURL)
	require.Equal(t, "navy", metadata.Attributes["color"])

	records, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, []float32{0.1, 0.2}, records[0].Vector)
}

func TestIngestURL_ReingestKeepsOneRecord(t *testing.T) {
	svc, store := newTestService(t)
	srv := imageServer(t)
	ctx := context.Background()

	first, err := svc.IngestURL(ctx, srv.URL+"/dress1.jpg")
	require.NoError(t, err)
	second, err := svc.IngestURL(ctx, srv.URL+"/dress1.jpg")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	records, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestIngestPath(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "local.jpg")
	require.NoError(t, os.WriteFile(path, []byte{0xFF, 0xD8}, 0o644))

	rec, err := svc.IngestPath(ctx, path)
	require.NoError(t, err)
	require.Equal(t, "local.jpg", rec.Filename)

	records, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestIngestBatch_PerItemIsolation(t *testing.T) {
	svc, store := newTestService(t)
	srv := imageServer(t)
	ctx := context.Background()

	report := svc.IngestBatch(ctx, []string{
		srv.URL + "/dress1.jpg",
		"  ", // 空白条目跳过
		srv.URL + "/missing.jpg",
		srv.URL + "/dress2.jpg",
	})

	require.Equal(t, 2, report.Processed)
	require.Len(t, report.Failures, 1)
	require.Contains(t, report.Failures[0], "/missing.jpg")

	records, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestIngestBatch_Empty(t *testing.T) {
	svc, _ := newTestService(t)

	report := svc.IngestBatch(context.Background(), nil)
	require.Equal(t, 0, report.Processed)
	require.Empty(t, report.Failures)
	require.NotNil(t, report.Failures)
}

func TestFilenameFromURL(t *testing.T) {
	cases := map[string]string{
		"http://example.com/a/b/dress.jpg":      "dress.jpg",
		"http://example.com/dress.jpg?size=big": "dress.jpg",
		"http://example.com/path/":              "",
	}
	for in, want := range cases {
		if got := filenameFromURL(in); got != want {
			t.Errorf("filenameFromURL(%q) = %q, want %q", in, got, want)
		}
	}
}
