package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"mime/multipart"
	"net/http"
	"time"
)

// ClipClient 通过 HTTP 调用 CLIP 编码侧车服务。
// 图片走 multipart 上传，文本走 JSON，两者共享同一模型，维度一致。
type ClipClient struct {
	baseURL    string
	dimensions int
	client     *http.Client
}

// NewClipClient 创建 CLIP 服务客户端，dims 为模型输出维度（ViT-B/32 为 512）
func NewClipClient(baseURL string, dims int) *ClipClient {
	if dims <= 0 {
		dims = 512
	}
	return &ClipClient{
		baseURL:    baseURL,
		dimensions: dims,
		client:     &http.Client{Timeout: 60 * time.Second},
	}
}

type clipResponse struct {
	Vector []float32 `json:"vector"`
}

// EmbedText 生成文本查询的 CLIP 向量
func (c *ClipClient) EmbedText(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/clip/encode-text", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// EmbedImage 生成图片的 CLIP 向量
func (c *ClipClient) EmbedImage(ctx context.Context, image []byte) ([]float32, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/clip/encode", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req)
}

// Dimensions 返回向量维度
func (c *ClipClient) Dimensions() int { return c.dimensions }

func (c *ClipClient) do(req *http.Request) ([]float32, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clip service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("clip service returned status %d", resp.StatusCode)
	}

	var out clipResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode clip response: %w", err)
	}
	if len(out.Vector) == 0 {
		return nil, fmt.Errorf("clip service returned empty vector")
	}

	return normalizeL2(out.Vector), nil
}

// normalizeL2 做 L2 归一化，零向量原样返回
func normalizeL2(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := float32(math.Sqrt(sum))
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
