// Package ocr recognizes text in images through the Gemini vision API.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/bearslyricattack/CompliAd/pkg/logger"
)

const ocrMaxTokens = 4096

// Gemini is the OCR capability backed by Gemini vision. Constructed
// once per process; safe for concurrent calls.
type Gemini struct {
	client *genai.Client
	model  string
	log    logger.Logger
}

// New creates the OCR adapter.
func New(ctx context.Context, apiKey, model string) (*Gemini, error) {
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
	return &Gemini{
		client: client,
		model:  model,
		log:    logger.GetLogger().WithField("component", "ocr"),
	}, nil
}

// RecognizeText extracts all visible text from an image buffer in
// reading order. languages is a tesseract-style hint like "eng+hin".
func (g *Gemini) RecognizeText(ctx context.Context, image []byte, mime, languages string) (string, error) {
	if len(image) == 0 {
		return "", errors.New("empty image")
	}
	if mime == "" {
		mime = "image/png"
	}

	prompt := "Extract all text visible in this image, in reading order. " +
		"Output the text only, with original line breaks; no commentary."
	if languages != "" {
		prompt += fmt.Sprintf(" Expected languages: %s.", strings.ReplaceAll(languages, "+", ", "))
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{
			{Text: prompt},
			{InlineData: &genai.Blob{MIMEType: mime, Data: image}},
		},
	}}
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.0),
		MaxOutputTokens: ocrMaxTokens,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	g.log.Debug("OCR completed", logger.Fields{
		"image_bytes": len(image),
		"chars":       len(text),
	})
	return text, nil
}
