// File path: internal/llm/providers/openai_client.go
package providers

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/november7/memberbot/internal/common"
)

// ErrMissingAPIKey is returned when a call requires a credential that was not
// configured.
var ErrMissingAPIKey = errors.New("api key not configured")

// OpenAIOptions configures an OpenAI-compatible provider. Chat and embedding
// traffic may target different endpoints: the answer model typically lives on
// a Groq-style completion API while embeddings come from the OpenAI API.
type OpenAIOptions struct {
	ChatBaseURL  string
	ChatAPIKey   string
	ChatModel    string
	EmbedBaseURL string
	EmbedAPIKey  string
	EmbedModel   string
	Temperature  float32
	MaxTokens    int
}

type OpenAIProvider struct {
	chatClient  *openai.Client
	embedClient *openai.Client
	opts        OpenAIOptions
}

func NewOpenAIProvider(opts OpenAIOptions) *OpenAIProvider {
	logger := common.Logger()
	p := &OpenAIProvider{opts: opts}
	if opts.ChatAPIKey != "" {
		cfg := openai.DefaultConfig(opts.ChatAPIKey)
		if opts.ChatBaseURL != "" {
			cfg.BaseURL = opts.ChatBaseURL
		}
		p.chatClient = openai.NewClientWithConfig(cfg)
	}
	if opts.EmbedAPIKey != "" {
		cfg := openai.DefaultConfig(opts.EmbedAPIKey)
		if opts.EmbedBaseURL != "" {
			cfg.BaseURL = opts.EmbedBaseURL
		}
		p.embedClient = openai.NewClientWithConfig(cfg)
	}
	logger.Info("llm: openai provider configured",
		"chat_model", opts.ChatModel, "embed_model", opts.EmbedModel,
		"chat_key", opts.ChatAPIKey != "", "embed_key", opts.EmbedAPIKey != "")
	return p
}

func (o *OpenAIProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if o.chatClient == nil {
		return "", fmt.Errorf("chat: %w", ErrMissingAPIKey)
	}
	logger := common.Logger()
	logger.Debug("llm: sending chat completion request", "model", o.opts.ChatModel, "messages", len(messages))
	req := openai.ChatCompletionRequest{
		Model:       o.opts.ChatModel,
		Temperature: o.opts.Temperature,
		MaxTokens:   o.opts.MaxTokens,
	}
	for _, msg := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: msg.Role, Content: msg.Content})
	}
	resp, err := o.chatClient.CreateChatCompletion(ctx, req)
	if err != nil {
		logger.Error("llm: chat completion failed", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	logger.Debug("llm: chat completion succeeded")
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAIProvider) Embed(ctx context.Context, input []string) ([][]float32, error) {
	if len(input) == 0 {
		return nil, nil
	}
	if o.embedClient == nil {
		return nil, fmt.Errorf("embed: %w", ErrMissingAPIKey)
	}
	logger := common.Logger()
	logger.Debug("llm: creating embeddings", "model", o.opts.EmbedModel, "items", len(input))
	resp, err := o.embedClient.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: input,
		Model: openai.EmbeddingModel(o.opts.EmbedModel),
	})
	if err != nil {
		logger.Error("llm: embedding request failed", "error", err)
		return nil, err
	}
	if len(resp.Data) != len(input) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d, got %d", len(input), len(resp.Data))
	}
	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		vectors[i] = data.Embedding
	}
	logger.Debug("llm: embedding request succeeded", "returned", len(vectors))
	return vectors, nil
}

func (o *OpenAIProvider) Name() string {
	return "openai"
}
