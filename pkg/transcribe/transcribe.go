// Package transcribe converts speech to text through the Whisper API.
package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/bearslyricattack/CompliAd/pkg/logger"
)

// Whisper is the speech-to-text adapter. Constructed once per process;
// safe for concurrent calls.
type Whisper struct {
	client  openai.Client
	timeout time.Duration
	log     logger.Logger
}

// New creates the transcriber with its per-call deadline.
func New(apiKey string, timeout time.Duration) (*Whisper, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is empty")
	}
	return &Whisper{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		timeout: timeout,
		log:     logger.GetLogger().WithField("component", "transcriber"),
	}, nil
}

// Transcribe converts an audio buffer to text. It succeeds only with
// non-empty text.
func (w *Whisper) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("empty audio")
	}
	if filename == "" {
		filename = "audio.mp3"
	}

	callCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	resp, err := w.client.Audio.Transcriptions.New(callCtx, openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(audio), filename, mimeForName(filename)),
		Model: openai.AudioModelWhisper1,
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", errors.New("empty transcript")
	}

	w.log.Info("Transcription completed", logger.Fields{
		"file":  filename,
		"size":  humanize.Bytes(uint64(len(audio))),
		"chars": len(text),
	})
	return text, nil
}

func mimeForName(name string) string {
	switch {
	case strings.HasSuffix(name, ".wav"):
		return "audio/wav"
	case strings.HasSuffix(name, ".m4a"):
		return "audio/mp4"
	case strings.HasSuffix(name, ".ogg"):
		return "audio/ogg"
	case strings.HasSuffix(name, ".flac"):
		return "audio/flac"
	case strings.HasSuffix(name, ".webm"):
		return "audio/webm"
	case strings.HasSuffix(name, ".mp4"), strings.HasSuffix(name, ".mov"):
		return "video/mp4"
	default:
		return "audio/mpeg"
	}
}
