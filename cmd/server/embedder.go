package main

import (
	"github.com/cloudwego/eino-ext/components/embedding/openai"

	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/config"
)

// openAIConfig 由服务配置组装 OpenAI 嵌入配置
func openAIConfig(cfg *config.Settings) *openai.EmbeddingConfig {
	return &openai.EmbeddingConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.OpenAIModel,
	}
}
