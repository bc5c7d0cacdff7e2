package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/khoahotran/career-onboard/internal/application/service"
	"github.com/khoahotran/career-onboard/internal/config"
	"github.com/khoahotran/career-onboard/pkg/logger"
)

type openAICompatibleAdapter struct {
	client *openai.Client
	model  string
	log    logger.Logger
}

// NewLLMAdapter talks to any OpenAI-compatible chat endpoint (Ollama,
// Gemini's OpenAI surface, OpenAI itself).
func NewLLMAdapter(cfg config.Config, log logger.Logger) (service.LLMService, error) {
	if cfg.LLM.Host == "" {
		return nil, fmt.Errorf("llm host is not configured")
	}

	apiKey := cfg.LLM.APIKey
	if apiKey == "" {
		apiKey = "dummy-key"
	}
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = cfg.LLM.Host

	client := openai.NewClientWithConfig(config)

	log.Info("LLM chat adapter initialized", zap.String("host", cfg.LLM.Host), zap.String("model", cfg.LLM.Model))
	return &openAICompatibleAdapter{client: client, model: cfg.LLM.Model, log: log}, nil
}

func (a *openAICompatibleAdapter) GenerateChatResponse(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Stream: false,
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("llm chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm returned no chat choices")
	}

	return resp.Choices[0].Message.Content, nil
}
