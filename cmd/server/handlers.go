package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/ingest"
	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/search"
	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/vecstore"
)

// server 把各服务注入到 gin 处理函数
type server struct {
	search *search.Service
	store  *vecstore.Store
	ingest *ingest.Service
}

// healthCheck 健康检查
func (s *server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// searchImages 执行混合检索并返回排名结果
func (s *server) searchImages(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := s.search.Search(c.Request.Context(), req.Query)
	if err != nil {
		logrus.WithError(err).WithField("query", req.Query).Error("Search failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, toSearchResponse(resp))
}

// listImages 返回全部已入库图片，不带相似度
func (s *server) listImages(c *gin.Context) {
	images, err := s.store.ListAll(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Error("Failed to list images")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	results := make([]ImageResult, 0, len(images))
	for _, img := range images {
		results = append(results, toImageResult(img, nil))
	}
	c.JSON(http.StatusOK, results)
}

// uploadImages 批量入库远程图片，逐条汇总成败
func (s *server) uploadImages(c *gin.Context) {
	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	report := s.ingest.IngestBatch(c.Request.Context(), req.URLs)
	c.JSON(http.StatusOK, UploadResponse{
		Processed: report.Processed,
		Failures:  report.Failures,
	})
}
