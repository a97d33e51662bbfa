package extract

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/bearslyricattack/CompliAd/pkg/cleaner"
	"github.com/bearslyricattack/CompliAd/pkg/logger"
	"github.com/bearslyricattack/CompliAd/pkg/metrics"
	"github.com/bearslyricattack/CompliAd/pkg/models"
)

// Extraction method names, recorded on the extracted content and in
// metrics labels.
const (
	MethodDirect        = "direct"
	MethodReaderProxy   = "reader_proxy"
	MethodReadability   = "readability"
	MethodBrowser       = "headless_browser"
	MethodMetadataOnly  = "metadata_only"
	MethodCaptionTrack  = "caption_track"
	MethodOEmbed        = "oembed"
	MethodAudioDownload = "audio_download"
	MethodTranscribe    = "transcribe"
	MethodImageOCR      = "image_ocr"
	MethodPDFText       = "pdf_text"
	MethodPDFOCR        = "pdf_ocr"
	MethodDocxText      = "docx_text"
	MethodDocText       = "doc_text"
)

// ErrNoContent is returned by an extractor that ran but produced nothing.
var ErrNoContent = errors.New("no content extracted")

// ErrIsWebPage is returned by the media extractor when the fetched
// resource turns out to be an HTML page. The pipeline degrades to the
// web page strategy plan.
var ErrIsWebPage = errors.New("resource is an html page")

// ExhaustedError reports that every strategy in a plan failed; Last is
// the final strategy's error.
type ExhaustedError struct {
	Last error
}

func (e *ExhaustedError) Error() string {
	if e.Last == nil {
		return "all extraction strategies failed"
	}
	return fmt.Sprintf("all extraction strategies failed: %v", e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Source is the raw material handed to an extractor: a URL, an uploaded
// file, or both absent for direct text.
type Source struct {
	URL      string
	Data     []byte
	Filename string
	MIME     string
}

// Extractor is one strategy turning a source into plain text.
type Extractor interface {
	Method() string
	Extract(ctx context.Context, src Source) (string, error)
}

// metadataProducer marks extractors whose output is metadata only.
// Their results are exempt from the minimum-length check.
type metadataProducer interface {
	MetadataOnly() bool
}

// Profile is the ordered strategy plan for one content kind.
type Profile struct {
	SourceType    string
	ContentFormat string
	Strategies    []Extractor
}

// Transcriber converts an audio buffer to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// OCR recognizes text in an image buffer. The languages hint uses
// tesseract-style codes ("eng+hin").
type OCR interface {
	RecognizeText(ctx context.Context, image []byte, mime, languages string) (string, error)
}

// Runner drives a strategy plan: strategies run sequentially, each
// failure is logged and the next strategy is tried, each success is
// cleaned and checked against the content-loss guard and the minimum
// cleaned length.
type Runner struct {
	log logger.Logger
}

// NewRunner creates a strategy runner.
func NewRunner() *Runner {
	return &Runner{
		log: logger.GetLogger().WithField("component", "extract"),
	}
}

// Run tries the profile's strategies in order until one yields enough
// cleaned text. When every strategy fails it returns ExhaustedError
// carrying the last cause.
func (r *Runner) Run(ctx context.Context, profile Profile, src Source) (*models.ExtractedContent, error) {
	var last error
	for _, ex := range profile.Strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		method := ex.Method()
		metrics.ExtractionAttemptsTotal.WithLabelValues(method).Inc()

		raw, err := ex.Extract(ctx, src)
		if err != nil {
			if errors.Is(err, ErrIsWebPage) {
				return nil, err
			}
			metrics.ExtractionFailuresTotal.WithLabelValues(method).Inc()
			r.log.Warn("Extraction strategy failed", logger.Fields{
				"event":   "extraction_failed",
				"method":  method,
				"status":  "failed",
				"message": err.Error(),
			})
			last = err
			continue
		}

		cleaned := cleaner.Clean(raw)
		if err := cleaner.EnforceContentLossGuard(raw, cleaned); err != nil {
			metrics.ExtractionFailuresTotal.WithLabelValues(method).Inc()
			r.log.Warn("Content-loss guard tripped", logger.Fields{
				"event":   "cleaning_loss",
				"method":  method,
				"status":  "failed",
				"message": err.Error(),
			})
			last = err
			continue
		}

		if utf8.RuneCountInString(cleaned) < cleaner.MinCleaned && !isMetadataOnly(ex) {
			r.log.Info("Extracted content too short, trying next strategy", logger.Fields{
				"event":   "extraction_too_short",
				"method":  method,
				"status":  "too_short",
				"message": fmt.Sprintf("cleaned length %d below %d", utf8.RuneCountInString(cleaned), cleaner.MinCleaned),
			})
			last = fmt.Errorf("%s: cleaned content too short", method)
			continue
		}

		if validation := cleaner.Validate(cleaned); !validation.IsValid {
			// A weak validation is a signal, not a failure: the text
			// still goes downstream, warnings attached to the log only.
			r.log.Debug("Extracted content is weak", logger.Fields{
				"event":   "extraction_weak",
				"method":  method,
				"status":  "ok",
				"message": fmt.Sprintf("reasons=%v warnings=%v", validation.Reasons, validation.Warnings),
			})
		}

		r.log.Info("Extraction succeeded", logger.Fields{
			"event":  "extraction_ok",
			"method": method,
			"status": "ok",
			"chars":  utf8.RuneCountInString(cleaned),
		})

		return &models.ExtractedContent{
			Raw:              raw,
			Cleaned:          cleaned,
			SourceType:       profile.SourceType,
			ContentFormat:    profile.ContentFormat,
			ExtractionMethod: method,
		}, nil
	}
	return nil, &ExhaustedError{Last: last}
}

func isMetadataOnly(ex Extractor) bool {
	mp, ok := ex.(metadataProducer)
	return ok && mp.MetadataOnly()
}
