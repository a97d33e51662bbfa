package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/bearslyricattack/CompliAd/pkg/claims"
	"github.com/bearslyricattack/CompliAd/pkg/config"
	"github.com/bearslyricattack/CompliAd/pkg/constants"
	"github.com/bearslyricattack/CompliAd/pkg/eventbus"
	"github.com/bearslyricattack/CompliAd/pkg/extract"
	"github.com/bearslyricattack/CompliAd/pkg/langdetect"
	"github.com/bearslyricattack/CompliAd/pkg/logger"
	"github.com/bearslyricattack/CompliAd/pkg/metrics"
	"github.com/bearslyricattack/CompliAd/pkg/models"
	"github.com/bearslyricattack/CompliAd/pkg/reasoner"
	"github.com/bearslyricattack/CompliAd/pkg/report"
)

// RuleRepository supplies the regulatory rule pack for a jurisdiction
// and industry.
type RuleRepository interface {
	Get(country, region, category string) []models.Rule
}

// AuditStore persists completed audit records.
type AuditStore interface {
	Save(ctx context.Context, record *models.AuditRecord) error
}

// Translator renders non-English content into English. Errors are
// non-fatal.
type Translator interface {
	Translate(ctx context.Context, text, language string) (string, error)
}

// Analyzer is the reasoner adapter boundary.
type Analyzer interface {
	Analyze(ctx context.Context, req reasoner.Request) (*models.Report, error)
}

// Services are the shared collaborators injected into the pipeline.
// All of them are process-wide singletons safe for concurrent calls.
type Services struct {
	Catalog    *extract.Catalog
	Runner     *extract.Runner
	Rules      RuleRepository
	Translator Translator
	Analyzer   Analyzer
	Store      AuditStore // nil when persistence is deferred or off
	Bus        *eventbus.EventBus
}

// Pipeline drives one audit end to end: fingerprint, extraction,
// cleaning, language detection, translation, claim reduction, analysis,
// normalization, persistence. It holds no mutable state between
// requests.
type Pipeline struct {
	cfg      config.PipelineConfig
	services Services
	log      logger.Logger
}

// New creates the pipeline.
func New(cfg config.PipelineConfig, services Services) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		services: services,
		log:      logger.GetLogger().WithField("component", "pipeline"),
	}
}

// Audit runs the full pipeline for one input and returns the
// normalized report. Unrecoverable input errors are returned as errors;
// reasoner failures come back as the structured shell report with a nil
// error — the contract is "never crash".
func (p *Pipeline) Audit(ctx context.Context, input models.Input, opts models.Options) (*models.Report, error) {
	start := time.Now()
	metrics.AuditsTotal.Inc()

	if opts.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if err := p.checkLimits(input); err != nil {
		return nil, err
	}

	kind, err := Fingerprint(input)
	if err != nil {
		return nil, err
	}

	jurisdiction := p.resolveJurisdiction(opts.Jurisdiction)
	rules := p.services.Rules.Get(jurisdiction.Country, jurisdiction.Region, opts.Category)

	extracted, err := p.acquire(ctx, kind, input)
	if err != nil {
		var exhausted *extract.ExhaustedError
		if errors.As(err, &exhausted) {
			return nil, fmt.Errorf("%w: %v", ErrExtractionExhausted, exhausted.Last)
		}
		return nil, err
	}

	meta := langdetect.DetectMetadata(
		extracted.Cleaned,
		extracted.SourceType,
		extracted.ContentFormat,
		extracted.ExtractionMethod,
	)
	extracted.Language = meta.Language

	if meta.Language == models.LanguageHindi || meta.Language == models.LanguageMixed {
		translated, terr := p.services.Translator.Translate(ctx, extracted.Cleaned, meta.Language)
		if terr != nil {
			p.log.Warn("Translation failed, continuing untranslated", logger.Fields{
				"language": meta.Language,
				"error":    terr.Error(),
			})
		} else {
			extracted.Translated = translated
		}
	}

	reducerInput := extracted.Cleaned
	if extracted.Translated != "" {
		reducerInput = extracted.Translated
	}
	reduced := claims.Reduce(reducerInput, p.cfg.MaxContentForAI)

	rep := p.analyze(ctx, reasoner.Request{
		Content:      reduced,
		Rules:        rules,
		Meta:         meta,
		Category:     opts.Category,
		AnalysisMode: opts.AnalysisMode,
		Jurisdiction: jurisdiction,
		BestEffort:   isMetadataMethod(extracted.ExtractionMethod),
	}, start)

	rep.Transcription = reducerInput
	rep.ProcessingTimeMs = time.Since(start).Milliseconds()

	p.observe(rep, start)
	p.persist(ctx, kind, input, opts, extracted, rep)

	return rep, nil
}

func (p *Pipeline) checkLimits(input models.Input) error {
	if utf8.RuneCountInString(input.Text) > p.cfg.MaxTextLength {
		return ErrTextTooLong
	}
	if input.File != nil && int64(len(input.File.Bytes)) > p.cfg.MaxMediaBytes() {
		return ErrPayloadTooLarge
	}
	return nil
}

func (p *Pipeline) resolveJurisdiction(j models.Jurisdiction) models.Jurisdiction {
	if j.Country == "" {
		j.Country = p.cfg.JurisdictionDefault
	}
	return j
}

// acquire produces the extracted content for one kind. Text goes
// straight through; media URLs that answer HTML degrade to the web
// page plan.
func (p *Pipeline) acquire(ctx context.Context, kind models.Kind, input models.Input) (*models.ExtractedContent, error) {
	if kind == models.KindText {
		return &models.ExtractedContent{
			Raw:              input.Text,
			Cleaned:          input.Text,
			SourceType:       models.SourceTypeUpload,
			ContentFormat:    models.ContentFormatArticle,
			ExtractionMethod: extract.MethodDirect,
		}, nil
	}

	src := extract.Source{URL: input.URL}
	if input.File != nil {
		src.Data = input.File.Bytes
		src.Filename = input.File.Filename
		src.MIME = input.File.MIME
	}

	var profile extract.Profile
	if kind == models.KindDocument {
		profile = p.services.Catalog.DocumentProfile(src.MIME, src.Filename)
	} else {
		var ok bool
		profile, ok = p.services.Catalog.Profile(kind)
		if !ok {
			return nil, fmt.Errorf("%w: no strategy plan for kind %q", ErrInputInvalid, kind)
		}
	}

	extracted, err := p.services.Runner.Run(ctx, profile, src)
	if errors.Is(err, extract.ErrIsWebPage) {
		p.log.Info("Media URL answered HTML, degrading to web page plan", logger.Fields{"url": input.URL})
		webProfile, _ := p.services.Catalog.Profile(models.KindWebPage)
		return p.services.Runner.Run(ctx, webProfile, src)
	}
	return extracted, err
}

// analyze calls the reasoner and falls back to the structured shell on
// unrecoverable failure.
func (p *Pipeline) analyze(ctx context.Context, req reasoner.Request, start time.Time) *models.Report {
	rep, err := p.services.Analyzer.Analyze(ctx, req)
	if err != nil {
		p.log.Error("Reasoner unrecoverable, returning shell report", logger.Fields{
			"error": err.Error(),
		})
		return report.ErrorShell("ReasonerUnrecoverable", err.Error(), time.Since(start))
	}
	return rep
}

func (p *Pipeline) observe(rep *models.Report, start time.Time) {
	metrics.AuditsByStatus.WithLabelValues(rep.Status).Inc()
	metrics.AuditDurationSeconds.Observe(time.Since(start).Seconds())
	for _, v := range rep.Violations {
		metrics.ViolationsBySeverity.WithLabelValues(v.Severity).Inc()
	}
}

// persist saves the audit record best-effort and fans it out on the
// event bus. Persistence failure never fails the response.
func (p *Pipeline) persist(ctx context.Context, kind models.Kind, input models.Input, opts models.Options, extracted *models.ExtractedContent, rep *models.Report) {
	record := &models.AuditRecord{
		ID:            uuid.NewString(),
		UserID:        opts.UserID,
		ContentType:   models.ContentTypeForKind(kind),
		OriginalInput: redactOriginal(input),
		ExtractedText: extracted.Cleaned,
		Report:        rep,
		CreatedAt:     time.Now().UTC(),
	}
	if extracted.ContentFormat == models.ContentFormatSpeech {
		record.Transcript = extracted.Cleaned
	}

	if p.services.Store != nil {
		if err := p.services.Store.Save(ctx, record); err != nil {
			metrics.PersistenceFailuresTotal.Inc()
			p.log.Error("Failed to persist audit record", logger.Fields{
				"audit_id": record.ID,
				"error":    err.Error(),
			})
		}
	}
	if p.services.Bus != nil {
		p.services.Bus.Publish(constants.AuditCompletedTopic, eventbus.Event{Payload: record})
	}
}

// redactOriginal keeps the stored input small and free of raw file
// bytes: uploads are recorded by filename only.
func redactOriginal(input models.Input) string {
	switch {
	case input.File != nil:
		return "file:" + input.File.Filename
	case input.URL != "":
		return input.URL
	default:
		if runes := []rune(input.Text); len(runes) > 2000 {
			return string(runes[:2000]) + "…"
		}
		return input.Text
	}
}

func isMetadataMethod(method string) bool {
	return method == extract.MethodMetadataOnly || method == extract.MethodOEmbed
}
