package agent

import (
	"grimoire/internal/config"
)

// The configuration passed to knowledge-agent construction mirrors the
// provider/config nesting used across agent frameworks, so it can be
// logged and inspected in a recognizable shape.

type VectorStoreOptions struct {
	CollectionName string `json:"collection_name"`
	Path           string `json:"path"`
}

type VectorStoreConfig struct {
	Provider string             `json:"provider"`
	Config   VectorStoreOptions `json:"config"`
}

type LLMOptions struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Endpoint    string  `json:"endpoint"`
}

type LLMConfig struct {
	Provider string     `json:"provider"`
	Config   LLMOptions `json:"config"`
}

type EmbedderOptions struct {
	Model         string `json:"model"`
	Endpoint      string `json:"endpoint"`
	EmbeddingDims int    `json:"embedding_dims"`
}

type EmbedderConfig struct {
	Provider string          `json:"provider"`
	Config   EmbedderOptions `json:"config"`
}

// Config describes the three subsystems backing a knowledge agent.
type Config struct {
	VectorStore VectorStoreConfig `json:"vector_store"`
	LLM         LLMConfig         `json:"llm"`
	Embedder    EmbedderConfig    `json:"embedder"`
}

// NewConfig builds the agent configuration from the fixed application
// template, parameterized only by the selected model. Collection name
// and store path are shared constants: every upload lands in the same
// on-disk collection.
func NewConfig(appCfg *config.Config, model string) Config {
	return Config{
		VectorStore: VectorStoreConfig{
			Provider: "sqlite",
			Config: VectorStoreOptions{
				CollectionName: appCfg.Knowledge.CollectionName,
				Path:           appCfg.Knowledge.Path,
			},
		},
		LLM: LLMConfig{
			Provider: "ollama",
			Config: LLMOptions{
				Model:       model,
				Temperature: appCfg.LLM.Temperature,
				MaxTokens:   appCfg.LLM.MaxTokens,
				Endpoint:    appCfg.Endpoint,
			},
		},
		Embedder: EmbedderConfig{
			Provider: "ollama",
			Config: EmbedderOptions{
				Model:         appCfg.Embedder.Model,
				Endpoint:      appCfg.Endpoint,
				EmbeddingDims: appCfg.Embedder.EmbeddingDims,
			},
		},
	}
}
