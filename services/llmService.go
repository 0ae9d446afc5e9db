package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// LLMService is the shared text-completion backend for the intent
// classifier and the quiz generator. It owns the per-call timeout so
// callers pass plain contexts.
type LLMService struct {
	llm     llms.Model
	timeout time.Duration
}

func NewLLMService(apiKey string, timeout time.Duration) (*LLMService, error) {
	llm, err := openai.New(
		openai.WithModel("gpt-4o-mini"),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	return &LLMService{llm: llm, timeout: timeout}, nil
}

// Complete sends a system/user prompt pair and returns the raw text of
// the first choice.
func (s *LLMService) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	messageHistory := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, userPrompt),
	}

	resp, err := s.llm.GenerateContent(ctx, messageHistory,
		llms.WithTemperature(0.2))
	if err != nil {
		log.Printf("[ERROR] Failed to generate completion: %v", err)
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}
