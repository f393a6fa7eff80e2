// Package config 提供服务的显式配置对象。
// 配置在进程启动时加载一次，随后以依赖注入的方式传递给各组件，
// 不使用包级单例。
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Settings 服务全部可配置项。
// 环境变量前缀为 DRESS_SEARCH_，也可通过当前目录下的 config.yaml 提供。
type Settings struct {
	ListenAddr   string `mapstructure:"listen_addr"`
	DBPath       string `mapstructure:"db_path"`
	TaxonomyPath string `mapstructure:"taxonomy_path"`
	ImagesDir    string `mapstructure:"images_dir"`

	// 嵌入服务配置："clip" 使用 CLIP 编码侧车，"openai" 仅支持文本查询
	EmbeddingProvider string  `mapstructure:"embedding_provider"`
	ClipServiceURL    string  `mapstructure:"clip_service_url"`
	ClipDimensions    int     `mapstructure:"clip_dimensions"`
	OpenAIAPIKey      string  `mapstructure:"openai_api_key"`
	OpenAIModel       string  `mapstructure:"openai_model"`
	EmbedRatePerSec   float64 `mapstructure:"embed_rate_per_sec"`

	// 查询过滤阈值（0-100），与模糊匹配得分比较
	FilterThreshold int `mapstructure:"filter_threshold"`

	IngestConcurrency int      `mapstructure:"ingest_concurrency"`
	FrontendOrigins   []string `mapstructure:"frontend_origins"`
	LogLevel          string   `mapstructure:"log_level"`
}

// Load 读取配置并返回 Settings 实例。
// 配置文件缺失不是错误，此时全部使用默认值与环境变量。
func Load() (*Settings, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("DRESS_SEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8000")
	v.SetDefault("db_path", "./data/dress_search.db")
	v.SetDefault("taxonomy_path", "./taxonomy.json")
	v.SetDefault("images_dir", "./images")
	v.SetDefault("embedding_provider", "clip")
	v.SetDefault("clip_service_url", "http://localhost:8001")
	v.SetDefault("clip_dimensions", 512)
	v.SetDefault("openai_model", "text-embedding-3-small")
	v.SetDefault("embed_rate_per_sec", 5.0)
	v.SetDefault("filter_threshold", 75)
	v.SetDefault("ingest_concurrency", 4)
	v.SetDefault("frontend_origins", []string{
		"http://localhost:5173",
		"http://localhost:5174",
		"http://127.0.0.1:5173",
		"http://127.0.0.1:5174",
	})
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &s, nil
}
