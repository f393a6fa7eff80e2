package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/config"
	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/embedding"
	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/ingest"
	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/queryfilter"
	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/search"
	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/tagger"
	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/taxonomy"
	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/vecstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	ctx := context.Background()

	// 词表缺失或非法时拒绝启动
	tax, err := taxonomy.Load(cfg.TaxonomyPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load taxonomy")
	}

	// 确保数据目录存在
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		logrus.WithError(err).Fatal("Failed to create data directory")
	}

	store, err := vecstore.Open(cfg.DBPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open database")
	}
	defer store.Close()

	// 表结构在接受任何请求之前建立
	if err := store.Init(ctx); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize schema")
	}
	logrus.WithField("db_path", cfg.DBPath).Info("Vector store ready")

	embedder, err := buildEmbedder(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create embedder")
	}

	extractor := queryfilter.New(tax, cfg.FilterThreshold)
	searchService := search.NewService(store, extractor, embedder)
	ingestService := ingest.New(ingest.Options{
		Store: store,
		// 入库路径对嵌入调用限流，检索路径不受影响
		Embedder:    embedding.NewRateLimited(embedder, cfg.EmbedRatePerSec),
		Tagger:      tagger.NewZeroShot(embedder, tax),
		ImagesDir:   cfg.ImagesDir,
		Concurrency: cfg.IngestConcurrency,
	})

	srv := &server{
		search: searchService,
		store:  store,
		ingest: ingestService,
	}

	r := gin.Default()

	// 配置 CORS，只放行前端来源
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.FrontendOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", srv.healthCheck)
	r.POST("/search", srv.searchImages)
	r.GET("/images", srv.listImages)
	r.POST("/upload-images", srv.uploadImages)

	logrus.WithField("addr", cfg.ListenAddr).Info("Starting server")
	if err := r.Run(cfg.ListenAddr); err != nil {
		logrus.WithError(err).Fatal("Server exited")
	}
}

// buildEmbedder 按配置选择嵌入实现
func buildEmbedder(ctx context.Context, cfg *config.Settings) (embedding.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case "clip":
		return embedding.NewClipClient(cfg.ClipServiceURL, cfg.ClipDimensions), nil
	case "openai":
		return embedding.NewOpenAIEmbedder(ctx, openAIConfig(cfg))
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
}
