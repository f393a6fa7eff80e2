package main

import (
	"encoding/json"

	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/search"
	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/vecstore"
)

// SearchRequest 检索请求
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
}

// ImageResult 单条结果，metadata 原样透传，similarity 未参与排名时为 null
type ImageResult struct {
	ID         int64           `json:"id"`
	Filename   string          `json:"filename"`
	FilePath   string          `json:"file_path"`
	Silhouette string          `json:"silhouette"`
	Length     string          `json:"length"`
	SleeveType string          `json:"sleeve_type"`
	Color      string          `json:"color"`
	Metadata   json.RawMessage `json:"metadata"`
	Similarity *float64        `json:"similarity"`
}

// SearchResponse 检索响应：提取出的过滤条件 + 降序排列的结果
type SearchResponse struct {
	Filters map[string]string `json:"filters"`
	Results []ImageResult     `json:"results"`
}

// UploadRequest 批量入库请求
type UploadRequest struct {
	URLs []string `json:"urls" binding:"required"`
}

// UploadResponse 批量入库的成败汇总
type UploadResponse struct {
	Processed int      `json:"processed"`
	Failures  []string `json:"failures"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
}

func toImageResult(img vecstore.Image, similarity *float64) ImageResult {
	metadata := json.RawMessage(img.MetadataJSON)
	if len(metadata) == 0 {
		metadata = json.RawMessage("{}")
	}
	return ImageResult{
		ID:         img.ID,
		Filename:   img.Filename,
		FilePath:   img.FilePath,
		Silhouette: img.Silhouette,
		Length:     img.Length,
		SleeveType: img.SleeveType,
		Color:      img.Color,
		Metadata:   metadata,
		Similarity: similarity,
	}
}

func toSearchResponse(resp *search.Response) SearchResponse {
	results := make([]ImageResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		score := r.Similarity
		results = append(results, toImageResult(r.Image, &score))
	}
	return SearchResponse{Filters: resp.Filters, Results: results}
}
