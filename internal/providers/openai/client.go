package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/sandevgo/chatctx/pkg/log"
)

// Config carries the provider settings. BaseURL is optional and lets the
// same client talk to any OpenAI-compatible endpoint.
type Config struct {
	APIKey         string
	BaseURL        string
	EmbeddingModel string
	ChatModel      string
}

// Client implements both core.Embedder and core.AnswerProvider over the
// OpenAI API.
type Client struct {
	api            *openai.Client
	embeddingModel string
	chatModel      string
}

func NewClient(cfg Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:            openai.NewClientWithConfig(clientCfg),
		embeddingModel: cfg.EmbeddingModel,
		chatModel:      cfg.ChatModel,
	}
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.embeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no data")
	}

	return resp.Data[0].Embedding, nil
}

func (c *Client) GenerateAnswer(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	log.FromCtx(ctx).Debug().
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("chat completion")

	return resp.Choices[0].Message.Content, nil
}
