package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultEndpoint = "http://127.0.0.1:11434"

	// Ollama's OpenAI-compatible surface ignores credentials, but the
	// client library requires one.
	PlaceholderAPIKey = "fake-key"

	AppDirName = "grimoire"
)

// LLMConfig holds generation settings applied to every agent.
type LLMConfig struct {
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// EmbedderConfig configures the embedding model used during indexing.
type EmbedderConfig struct {
	Model         string `yaml:"model"`
	EmbeddingDims int    `yaml:"embedding_dims"`
}

// KnowledgeConfig configures the on-disk vector collection and retrieval.
type KnowledgeConfig struct {
	CollectionName    string `yaml:"collection_name"`
	Path              string `yaml:"path"`
	SentencesPerChunk int    `yaml:"sentences_per_chunk"`
	OverlapSentences  int    `yaml:"overlap_sentences"`
	TopK              int    `yaml:"top_k"`
}

// Config is the root application configuration.
type Config struct {
	Endpoint         string          `yaml:"endpoint"`
	LLM              LLMConfig       `yaml:"llm"`
	Embedder         EmbedderConfig  `yaml:"embedder"`
	Knowledge        KnowledgeConfig `yaml:"knowledge"`
	QueryTimeoutSecs int             `yaml:"query_timeout_secs"` // 0 disables the deadline
	LogLevel         string          `yaml:"log_level"`
}

// BaseURL returns the OpenAI-compatible API root derived from the endpoint.
func (c *Config) BaseURL() string {
	return c.Endpoint + "/v1"
}

// Load reads a config from path. A missing file yields defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./grimoire.yaml first, then the user config dir.
// If neither exists it returns defaults without writing anything.
func LoadDefault() (*Config, error) {
	if _, err := os.Stat("grimoire.yaml"); err == nil {
		return Load("grimoire.yaml")
	}
	dir, err := AppDir()
	if err != nil {
		return defaultConfig(), nil
	}
	return Load(filepath.Join(dir, "config.yaml"))
}

// AppDir returns the per-user application directory, creating it if needed.
func AppDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, herr := os.UserHomeDir()
		if herr != nil {
			return "", err
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	dir := filepath.Join(configDir, AppDirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

func defaultConfig() *Config {
	return &Config{
		Endpoint: endpointFromEnv(),
		LLM: LLMConfig{
			Temperature: 0,
			MaxTokens:   8000,
		},
		Embedder: EmbedderConfig{
			Model:         "nomic-embed-text:latest",
			EmbeddingDims: 1536,
		},
		Knowledge: KnowledgeConfig{
			CollectionName:    "grimoire",
			Path:              ".grimoire",
			SentencesPerChunk: 5,
			OverlapSentences:  1,
			TopK:              5,
		},
		LogLevel: "info",
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = endpointFromEnv()
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 8000
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = "nomic-embed-text:latest"
	}
	if cfg.Embedder.EmbeddingDims == 0 {
		cfg.Embedder.EmbeddingDims = 1536
	}
	if cfg.Knowledge.CollectionName == "" {
		cfg.Knowledge.CollectionName = "grimoire"
	}
	if cfg.Knowledge.Path == "" {
		cfg.Knowledge.Path = ".grimoire"
	}
	if cfg.Knowledge.SentencesPerChunk == 0 {
		cfg.Knowledge.SentencesPerChunk = 5
	}
	if cfg.Knowledge.TopK == 0 {
		cfg.Knowledge.TopK = 5
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func endpointFromEnv() string {
	if v := os.Getenv("OLLAMA_ENDPOINT"); v != "" {
		return v
	}
	return DefaultEndpoint
}
