// Package ingest 实现图片入库：下载、属性分类、向量化、写入存储。
// 单条入库要么完整成功要么完整失败；批量入库对单条失败做隔离，
// 逐条记录成败并继续处理剩余条目。
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/embedding"
	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/taxonomy"
	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/vecstore"
)

// Tagger 图片属性分类能力，标签词表与查询过滤共用
type Tagger interface {
	Classify(ctx context.Context, image []byte) (map[string]string, error)
}

// Upserter 入库所需的存储能力，由 *vecstore.Store 实现
type Upserter interface {
	Upsert(ctx context.Context, rec vecstore.Image, vector []float32) (int64, error)
}

// Options ingest.Service 配置选项
type Options struct {
	Store     Upserter
	Embedder  embedding.Embedder
	Tagger    Tagger
	ImagesDir string
	// Concurrency 批量入库的并发上限，非正时为 4
	Concurrency int
	// Client 下载用 HTTP 客户端，nil 时使用 30 秒超时的默认客户端
	Client *http.Client
}

// Service 图片入库服务
type Service struct {
	store       Upserter
	embedder    embedding.Embedder
	tagger      Tagger
	imagesDir   string
	concurrency int
	client      *http.Client
}

// New 创建入库服务
func New(opts Options) *Service {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Service{
		store:       opts.Store,
		embedder:    opts.Embedder,
		tagger:      opts.Tagger,
		imagesDir:   opts.ImagesDir,
		concurrency: concurrency,
		client:      client,
	}
}

// IngestURL 下载远程图片并入库，返回写入后的记录
func (s *Service) IngestURL(ctx context.Context, rawURL string) (vecstore.Image, error) {
	path, err := s.download(rawURL)
	if err != nil {
		return vecstore.Image{}, err
	}
	return s.ingestFile(ctx, path, rawURL)
}

// IngestPath 入库一张本地图片
func (s *Service) IngestPath(ctx context.Context, path string) (vecstore.Image, error) {
	return s.ingestFile(ctx, path, path)
}

// ingestFile 分类、向量化并写入存储，source 原样记入 metadata
func (s *Service) ingestFile(ctx context.Context, path, source string) (vecstore.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return vecstore.Image{}, fmt.Errorf("failed to read image: %w", err)
	}

	attributes, err := s.tagger.Classify(ctx, data)
	if err != nil {
		return vecstore.Image{}, fmt.Errorf("failed to classify image: %w", err)
	}

	vector, err := s.embedder.EmbedImage(ctx, data)
	if err != nil {
		return vecstore.Image{}, fmt.Errorf("failed to embed image: %w", err)
	}

	metadata, err := json.Marshal(map[string]any{
		"source_url": source,
		"attributes": attributes,
	})
	if err != nil {
		return vecstore.Image{}, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	rec := vecstore.Image{
		Filename:     filepath.Base(path),
		FilePath:     absPath,
		Silhouette:   attributeOrUnknown(attributes, taxonomy.CategorySilhouette),
		Length:       attributeOrUnknown(attributes, taxonomy.CategoryLength),
		SleeveType:   attributeOrUnknown(attributes, taxonomy.CategorySleeveType),
		Color:        attributeOrUnknown(attributes, taxonomy.CategoryColor),
		MetadataJSON: string(metadata),
	}

	id, err := s.store.Upsert(ctx, rec, vector)
	if err != nil {
		return vecstore.Image{}, err
	}
	rec.ID = id

	logrus.WithFields(logrus.Fields{
		"filename": rec.Filename,
		"id":       id,
	}).Info("Image ingested")
	return rec, nil
}

// Report 批量入库的成败汇总，Failures 的每项形如 "url: 错误信息"
type Report struct {
	Processed int      `json:"processed"`
	Failures  []string `json:"failures"`
}

// IngestBatch 并发入库一批 URL。
// 空白条目跳过；单条失败只记入 Failures，不中断整批。
func (s *Service) IngestBatch(ctx context.Context, urls []string) Report {
	var (
		mu     sync.Mutex
		report Report
	)
	report.Failures = []string{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, rawURL := range urls {
		trimmed := strings.TrimSpace(rawURL)
		if trimmed == "" {
			continue
		}
		g.Go(func() error {
			_, err := s.IngestURL(gctx, trimmed)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failures = append(report.Failures, fmt.Sprintf("%s: %v", trimmed, err))
				logrus.WithError(err).WithField("url", trimmed).Warn("Ingestion failed")
			} else {
				report.Processed++
			}
			return nil
		})
	}
	// 单条错误已逐项收集，这里不会返回错误
	_ = g.Wait()
	return report
}

func attributeOrUnknown(attributes map[string]string, category string) string {
	if v, ok := attributes[category]; ok && v != "" {
		return v
	}
	return taxonomy.Unknown
}
