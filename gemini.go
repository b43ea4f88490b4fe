package pdfquiz

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is the model used when none is configured
const DefaultGeminiModel = "gemini-1.5-flash-latest"

// GeminiClient generates questions through the Gemini API
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

// NewGeminiClient creates a Gemini collaborator
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	m := client.GenerativeModel(model)
	m.SetTemperature(0.7)
	m.SetMaxOutputTokens(8192)

	return &GeminiClient{client: client, model: m, name: model}, nil
}

// Generate sends the prompt and returns the concatenated text parts
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response from %s", c.name)
	}

	cand := resp.Candidates[0]
	if cand.FinishReason != genai.FinishReasonStop {
		log.Printf("WARNING: %s stopped due to %s", c.name, cand.FinishReason)
	}
	if cand.Content == nil {
		return "", fmt.Errorf("empty candidate from %s", c.name)
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// Close releases the underlying client
func (c *GeminiClient) Close() error {
	return c.client.Close()
}
