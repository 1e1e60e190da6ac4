package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Config holds connection settings for an OpenAI-compatible endpoint.
type Config struct {
	BaseURL        string
	APIKey         string
	Model          string
	EmbeddingModel string
	Temperature    float64
}

// Client calls a chat model for analysis and an embedding model for vectors.
// A nil API key leaves the client constructed but unavailable, so callers can
// degrade to link-based behavior without nil checks everywhere.
type Client struct {
	api         *openai.Client
	model       string
	embedModel  string
	temperature float64
	logger      *slog.Logger
}

// NewClient builds a client from cfg. The zero-value model names fall back
// to sensible OpenAI defaults.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = string(openai.SmallEmbedding3)
	}

	var api *openai.Client
	if cfg.APIKey != "" {
		clientConfig := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
		}
		api = openai.NewClientWithConfig(clientConfig)
	}

	return &Client{
		api:         api,
		model:       cfg.Model,
		embedModel:  cfg.EmbeddingModel,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// IsAvailable reports whether the client was configured with credentials.
func (c *Client) IsAvailable() bool {
	return c != nil && c.api != nil
}

// ExtractConcepts asks the model for the main topic, prerequisites, and
// search keywords of a goal note.
func (c *Client) ExtractConcepts(ctx context.Context, title, content string) (*ConceptExtraction, error) {
	raw, err := c.complete(ctx, conceptSystemPrompt, conceptPrompt(title, content))
	if err != nil {
		return nil, err
	}
	extraction, err := decodeResponse[ConceptExtraction](raw)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("llm: concepts extracted",
		slog.String("main_topic", extraction.MainTopic),
		slog.Int("prerequisites", len(extraction.Prerequisites)),
		slog.Int("keywords", len(extraction.Keywords)))
	return &extraction, nil
}

// AnalyzeLearningOrder asks the model to sequence candidate notes toward the
// goal and flag missing prerequisite concepts.
func (c *Client) AnalyzeLearningOrder(ctx context.Context, goalTitle string, candidates []NoteSummary) (*PathAnalysis, error) {
	raw, err := c.complete(ctx, orderSystemPrompt, orderPrompt(goalTitle, candidates))
	if err != nil {
		return nil, err
	}
	analysis, err := decodeResponse[PathAnalysis](raw)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("llm: order analyzed",
		slog.String("goal", goalTitle),
		slog.Int("ordered", len(analysis.LearningOrder)),
		slog.Int("gaps", len(analysis.KnowledgeGaps)))
	return &analysis, nil
}

// Embed computes the embedding vector for text. Satisfies
// similarity.Embedder.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if !c.IsAvailable() {
		return nil, fmt.Errorf("llm: embeddings: client not configured")
	}
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.embedModel),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create embedding: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("llm: empty embedding response")
	}
	return resp.Data[0].Embedding, nil
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	if !c.IsAvailable() {
		return "", fmt.Errorf("llm: client not configured")
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: float32(c.temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		c.logger.Warn("llm: request failed",
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("llm: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: no choices in response")
	}

	c.logger.Debug("llm: request completed",
		slog.Int("prompt_tokens", resp.Usage.PromptTokens),
		slog.Int("completion_tokens", resp.Usage.CompletionTokens),
		slog.Duration("elapsed", time.Since(start)))
	return resp.Choices[0].Message.Content, nil
}
