// Package agent wraps the model server behind a single Start method.
// An agent bundles a model identifier, an instruction string and,
// for the knowledge variant, an indexed document collection.
package agent

import (
	"context"
	"fmt"
	"strings"

	"grimoire/internal/knowledge"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"
)

const (
	// ModelPrefix provider-qualifies model identifiers, LiteLLM style.
	ModelPrefix = "ollama/"

	// NoResponsePlaceholder substitutes for an empty completion.
	NoResponsePlaceholder = "No response from the model."
)

const knowledgePromptHeader = "Use the following retrieved context to answer the question. " +
	"If the context does not contain the answer, say so.\n\n# Context\n"

// Agent answers queries against one model, optionally augmented with
// retrieved document context.
type Agent struct {
	Name         string
	Instructions string
	Model        string // provider-qualified, e.g. "ollama/qwen3:latest"
	UserID       string

	client      openai.Client
	temperature float64
	maxTokens   int

	// Knowledge variant only.
	store    *knowledge.Store
	embedder *knowledge.Embedder
	topK     int
}

// QualifyModel prefixes the provider tag unless already present.
func QualifyModel(model string) string {
	if strings.HasPrefix(model, ModelPrefix) {
		return model
	}
	return ModelPrefix + model
}

// apiModel strips the provider tag for the wire call; the /v1 surface
// wants the bare Ollama model name.
func (a *Agent) apiModel() string {
	return strings.TrimPrefix(a.Model, ModelPrefix)
}

// HasKnowledge reports whether this agent retrieves document context.
func (a *Agent) HasKnowledge() bool {
	return a.store != nil
}

// Start runs a single query and returns the textual answer. The call
// blocks for the duration of the model round trip; callers own
// backgrounding and any deadline on ctx.
func (a *Agent) Start(ctx context.Context, query string) (string, error) {
	system := a.Instructions

	if a.store != nil {
		contextBlock, err := a.retrieve(ctx, query)
		if err != nil {
			return "", err
		}
		if contextBlock != "" {
			system = system + "\n\n" + knowledgePromptHeader + contextBlock
		}
	}

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(a.apiModel()),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(query),
		},
		Temperature: openai.Float(a.temperature),
		MaxTokens:   openai.Int(int64(a.maxTokens)),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return NoResponsePlaceholder, nil
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return NoResponsePlaceholder, nil
	}
	return content, nil
}

func (a *Agent) retrieve(ctx context.Context, query string) (string, error) {
	vector, err := a.embedder.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embedding query: %w", err)
	}
	results, err := a.store.Search(ctx, vector, a.topK)
	if err != nil {
		return "", fmt.Errorf("searching knowledge store: %w", err)
	}

	var sb strings.Builder
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("[%s]\n%s\n\n", r.Chunk.Source, r.Chunk.Text))
	}
	return strings.TrimSpace(sb.String()), nil
}
