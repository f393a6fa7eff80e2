// 离线批量入库：从 CSV 读取图片 URL，下载并写入 SQLite。
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/config"
	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/embedding"
	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/ingest"
	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/tagger"
	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/taxonomy"
	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/vecstore"
)

func main() {
	csvPath := flag.String("csv", "", "CSV file with image URLs in the first column")
	flag.Parse()

	if *csvPath == "" {
		logrus.Fatal("-csv is required")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}

	ctx := context.Background()

	tax, err := taxonomy.Load(cfg.TaxonomyPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load taxonomy")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		logrus.WithError(err).Fatal("Failed to create data directory")
	}

	store, err := vecstore.Open(cfg.DBPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open database")
	}
	defer store.Close()

	if err := store.Init(ctx); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize schema")
	}

	clip := embedding.NewClipClient(cfg.ClipServiceURL, cfg.ClipDimensions)
	service := ingest.New(ingest.Options{
		Store:       store,
		Embedder:    embedding.NewRateLimited(clip, cfg.EmbedRatePerSec),
		Tagger:      tagger.NewZeroShot(clip, tax),
		ImagesDir:   cfg.ImagesDir,
		Concurrency: cfg.IngestConcurrency,
	})

	urls, err := loadURLs(*csvPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to read CSV")
	}
	logrus.WithField("count", len(urls)).Info("Found URLs")

	report := service.IngestBatch(ctx, urls)

	logrus.WithFields(logrus.Fields{
		"processed": report.Processed,
		"failed":    len(report.Failures),
	}).Info("Ingestion finished")
	for _, failure := range report.Failures {
		logrus.Warn(failure)
	}
	if report.Processed == 0 && len(report.Failures) > 0 {
		os.Exit(1)
	}
}

// loadURLs 读取 CSV 第一列中以 http 开头的条目
func loadURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var urls []string
	for _, row := range records {
		if len(row) == 0 {
			continue
		}
		value := strings.TrimSpace(row[0])
		if strings.HasPrefix(strings.ToLower(value), "http") {
			urls = append(urls, value)
		}
	}
	return urls, nil
}
