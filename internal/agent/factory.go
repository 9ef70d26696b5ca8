package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"grimoire/internal/config"
	"grimoire/internal/knowledge"
	"grimoire/internal/logging"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	chatInstructions = "You are a helpful assistant. Answer questions clearly and concisely."

	knowledgeInstructions = "You answer questions based on the provided knowledge."

	// Embedding requests are batched to keep individual calls bounded.
	embedBatchSize = 32
)

// Factory constructs agents against one model-serving endpoint.
type Factory struct {
	client openai.Client
	appCfg *config.Config
}

func NewFactory(appCfg *config.Config) *Factory {
	client := openai.NewClient(
		option.WithAPIKey(config.PlaceholderAPIKey),
		option.WithBaseURL(appCfg.BaseURL()),
	)
	return &Factory{client: client, appCfg: appCfg}
}

// ChatAgent builds a stateless conversational agent for the model.
func (f *Factory) ChatAgent(model string) (*Agent, error) {
	return &Agent{
		Name:         "Chat Agent",
		Instructions: chatInstructions,
		Model:        QualifyModel(model),
		client:       f.client,
		temperature:  f.appCfg.LLM.Temperature,
		maxTokens:    f.appCfg.LLM.MaxTokens,
	}, nil
}

// KnowledgeAgent builds an agent over the given documents. Extraction,
// chunking, embedding and indexing happen synchronously before it
// returns, so the call is long-running and must be made off the
// render loop. On any failure no usable agent is returned.
func (f *Factory) KnowledgeAgent(ctx context.Context, model string, files []string, userID string) (*Agent, error) {
	cfg := NewConfig(f.appCfg, QualifyModel(model))
	if data, err := json.Marshal(cfg); err == nil {
		logging.Debug("building knowledge agent", "config", string(data), "files", len(files))
	}

	chunker := knowledge.NewChunker(
		f.appCfg.Knowledge.SentencesPerChunk,
		f.appCfg.Knowledge.OverlapSentences,
	)

	var chunks []knowledge.Chunk
	for _, path := range files {
		text, err := knowledge.ExtractText(path)
		if err != nil {
			return nil, fmt.Errorf("extracting %s: %w", path, err)
		}
		chunks = append(chunks, chunker.Split(path, text)...)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no indexable text found in %d files", len(files))
	}

	embedder := knowledge.NewEmbedder(f.client, cfg.Embedder.Config.Model, cfg.Embedder.Config.EmbeddingDims)

	vectors := make([][]float64, 0, len(chunks))
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}
		batch, err := embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}

	store, err := knowledge.OpenStore(cfg.VectorStore.Config.Path, cfg.VectorStore.Config.CollectionName)
	if err != nil {
		return nil, fmt.Errorf("opening knowledge store: %w", err)
	}
	if err := store.Replace(ctx, chunks, vectors); err != nil {
		store.Close()
		return nil, fmt.Errorf("indexing documents: %w", err)
	}

	logging.Info("knowledge agent indexed", "files", len(files), "chunks", len(chunks))

	return &Agent{
		Name:         "Knowledge Agent",
		Instructions: knowledgeInstructions,
		Model:        QualifyModel(model),
		UserID:       userID,
		client:       f.client,
		temperature:  cfg.LLM.Config.Temperature,
		maxTokens:    cfg.LLM.Config.MaxTokens,
		store:        store,
		embedder:     embedder,
		topK:         f.appCfg.Knowledge.TopK,
	}, nil
}
