package reasoner

import (
	"context"
	"errors"

	"google.golang.org/genai"
)

// Client is the structured-generation backend behind the adapter.
type Client interface {
	// Generate runs one JSON-mode call and returns the raw model text.
	Generate(ctx context.Context, model, system, user string, maxTokens int32) (string, error)
}

// GeminiClient backs the adapter with the Gemini API. Safe for
// concurrent calls; constructed once per process.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates the shared Gemini client.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{client: client}, nil
}

func (g *GeminiClient) Generate(ctx context.Context, model, system, user string, maxTokens int32) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.0),
		TopP:             genai.Ptr[float32](0.95),
		MaxOutputTokens:  maxTokens,
		ResponseMIMEType: "application/json",
	}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(user), cfg)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("empty model response")
	}
	return text, nil
}
