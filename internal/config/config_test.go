package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, float64(0), cfg.LLM.Temperature)
	assert.Equal(t, 8000, cfg.LLM.MaxTokens)
	assert.Equal(t, "nomic-embed-text:latest", cfg.Embedder.Model)
	assert.Equal(t, 1536, cfg.Embedder.EmbeddingDims)
	assert.Equal(t, "grimoire", cfg.Knowledge.CollectionName)
	assert.Equal(t, 5, cfg.Knowledge.SentencesPerChunk)
	assert.Equal(t, 1, cfg.Knowledge.OverlapSentences)
	assert.Equal(t, 5, cfg.Knowledge.TopK)
	assert.Equal(t, 0, cfg.QueryTimeoutSecs)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grimoire.yaml")
	data := "endpoint: http://10.0.0.2:11434\nknowledge:\n  top_k: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.2:11434", cfg.Endpoint)
	assert.Equal(t, 3, cfg.Knowledge.TopK)
	// Unset fields fall back to defaults.
	assert.Equal(t, 8000, cfg.LLM.MaxTokens)
	assert.Equal(t, "grimoire", cfg.Knowledge.CollectionName)
}

func TestEndpointFromEnv(t *testing.T) {
	t.Setenv("OLLAMA_ENDPOINT", "http://192.168.1.5:11434")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.1.5:11434", cfg.Endpoint)
	assert.Equal(t, "http://192.168.1.5:11434/v1", cfg.BaseURL())
}

func TestBaseURL(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultEndpoint+"/v1", cfg.BaseURL())
}
