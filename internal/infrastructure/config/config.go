// Package config loads service configuration from a TOML file with
// environment overrides for secrets.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full service configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Dataset DatasetConfig `toml:"dataset"`
	OpenAI  OpenAIConfig  `toml:"openai"`
	Index   IndexConfig   `toml:"index"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DatasetConfig points at the catalog CSV files.
type DatasetConfig struct {
	Dir          string `toml:"dir"`
	ProductsFile string `toml:"products_file"`
	AreaCodeFile string `toml:"area_code_file"`
	DeliveryFile string `toml:"delivery_file"`
}

// OpenAIConfig configures the embedding and completion adapters. The API key
// comes from the OPENAI_API_KEY environment variable, never the file.
type OpenAIConfig struct {
	BaseURL         string `toml:"base_url"`
	EmbeddingModel  string `toml:"embedding_model"`
	CompletionModel string `toml:"completion_model"`
	APIKey          string `toml:"-"`
}

// IndexConfig configures chunk geometry and retrieval depth.
type IndexConfig struct {
	ChunkSize    int `toml:"chunk_size"`
	ChunkOverlap int `toml:"chunk_overlap"`
	TopK         int `toml:"top_k"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":5000"},
		Dataset: DatasetConfig{
			Dir:          "./dataset",
			ProductsFile: "all_product.csv",
			AreaCodeFile: "areaCode.csv",
			DeliveryFile: "delivery.csv",
		},
		OpenAI: OpenAIConfig{},
		Index: IndexConfig{
			ChunkSize:    1536,
			ChunkOverlap: 200,
			TopK:         4,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the TOML file at path over the defaults. An empty path or a
// missing file yields the defaults. The OpenAI API key is always taken from
// the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err == nil {
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	return cfg, nil
}
