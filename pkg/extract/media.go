package extract

import (
	"context"
	"errors"
	"strings"

	"github.com/bearslyricattack/CompliAd/pkg/fetcher"
)

// ImageOCRExtractor recognizes text in an uploaded image.
type ImageOCRExtractor struct {
	ocr       OCR
	languages string
}

// NewImageOCR creates the image OCR extractor.
func NewImageOCR(ocr OCR, languages string) *ImageOCRExtractor {
	return &ImageOCRExtractor{ocr: ocr, languages: languages}
}

func (e *ImageOCRExtractor) Method() string { return MethodImageOCR }

func (e *ImageOCRExtractor) Extract(ctx context.Context, src Source) (string, error) {
	if len(src.Data) == 0 {
		return "", errors.New("empty image")
	}
	text, err := e.ocr.RecognizeText(ctx, src.Data, src.MIME, e.languages)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoContent
	}
	return text, nil
}

// AudioTranscribeExtractor transcribes an uploaded audio or video
// buffer. It succeeds only with non-empty text.
type AudioTranscribeExtractor struct {
	transcriber Transcriber
}

// NewAudioTranscribe creates the upload transcription extractor.
func NewAudioTranscribe(t Transcriber) *AudioTranscribeExtractor {
	return &AudioTranscribeExtractor{transcriber: t}
}

func (e *AudioTranscribeExtractor) Method() string { return MethodTranscribe }

func (e *AudioTranscribeExtractor) Extract(ctx context.Context, src Source) (string, error) {
	if len(src.Data) == 0 {
		return "", errors.New("empty media")
	}
	text, err := e.transcriber.Transcribe(ctx, src.Data, src.Filename)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoContent
	}
	return text, nil
}

// MediaURLExtractor fetches a direct media URL and transcribes the
// body. When the response turns out to be an HTML page it returns
// ErrIsWebPage so the pipeline can degrade to the web page plan.
type MediaURLExtractor struct {
	fetcher     *fetcher.Fetcher
	transcriber Transcriber
}

// NewMediaURL creates the media URL extractor.
func NewMediaURL(f *fetcher.Fetcher, t Transcriber) *MediaURLExtractor {
	return &MediaURLExtractor{fetcher: f, transcriber: t}
}

func (e *MediaURLExtractor) Method() string { return MethodTranscribe }

func (e *MediaURLExtractor) Extract(ctx context.Context, src Source) (string, error) {
	res, err := e.fetcher.Get(ctx, src.URL)
	if err != nil {
		return "", err
	}
	if strings.Contains(res.MIME, "text/html") {
		return "", ErrIsWebPage
	}

	filename := src.Filename
	if filename == "" {
		filename = fileNameFromURL(res.FinalURL)
	}
	text, err := e.transcriber.Transcribe(ctx, res.Bytes, filename)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoContent
	}
	return text, nil
}

func fileNameFromURL(rawURL string) string {
	if idx := strings.LastIndex(rawURL, "/"); idx >= 0 && idx < len(rawURL)-1 {
		name := rawURL[idx+1:]
		if q := strings.IndexByte(name, '?'); q >= 0 {
			name = name[:q]
		}
		if name != "" {
			return name
		}
	}
	return "media.bin"
}
