package pdfquiz

import (
	"context"
	"fmt"
	"log"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are an expert quiz creator. Generate high-quality multiple choice questions with exactly 4 options each and reply with JSON only."

// OpenAIClient generates questions through an OpenAI-compatible chat API
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates an OpenAI collaborator. baseURL may point at any
// OpenAI-compatible gateway; empty keeps the default endpoint.
func NewOpenAIClient(apiKey, model, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Generate sends the prompt and returns the raw message content
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.7,
			MaxTokens:   8192,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to call %s: %w", c.model, err)
	}

	VerboseLog("Received response from %s with %d choices", c.model, len(resp.Choices))
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", c.model)
	}
	if reason := resp.Choices[0].FinishReason; reason != openai.FinishReasonStop && reason != "" {
		log.Printf("WARNING: %s stopped due to %s", c.model, reason)
	}
	return resp.Choices[0].Message.Content, nil
}
