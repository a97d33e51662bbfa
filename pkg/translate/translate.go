// Package translate renders non-English content into English for the
// reasoner. Failure is non-fatal; the pipeline proceeds untranslated.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/bearslyricattack/CompliAd/pkg/logger"
	"github.com/bearslyricattack/CompliAd/pkg/models"
)

const (
	// Only the head of very long texts is translated.
	maxTranslateChars = 10000

	translateMaxTokens = 1500
)

// Translator produces an English semantic rendering of Hindi or
// mixed-script content. Constructed once per process; safe for
// concurrent calls.
type Translator struct {
	client *genai.Client
	model  string
	log    logger.Logger
}

// New creates the translator.
func New(ctx context.Context, apiKey, model string) (*Translator, error) {
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
	return &Translator{
		client: client,
		model:  model,
		log:    logger.GetLogger().WithField("component", "translator"),
	}, nil
}

// Translate renders up to the first 10,000 characters of text into
// English, preserving medical terms and claim phrasing.
func (t *Translator) Translate(ctx context.Context, text, language string) (string, error) {
	if language != models.LanguageHindi && language != models.LanguageMixed {
		return "", nil
	}
	if runes := []rune(text); len(runes) > maxTranslateChars {
		text = string(runes[:maxTranslateChars])
	}

	system := "You are a precise translator. Translate the user's marketing content to English. " +
		"Preserve medical terms and the exact phrasing of claims. Output plain English text only, no commentary."

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.0),
		MaxOutputTokens: translateMaxTokens,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
	}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, genai.Text(text), cfg)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	translated := strings.TrimSpace(resp.Text())
	if translated == "" {
		return "", errors.New("empty translation")
	}
	t.log.Debug("Translated content", logger.Fields{
		"language": language,
		"chars":    len(translated),
	})
	return translated, nil
}
