package extract

import (
	"strings"
	"time"

	youtube "github.com/kkdai/youtube/v2"

	"github.com/bearslyricattack/CompliAd/pkg/config"
	"github.com/bearslyricattack/CompliAd/pkg/fetcher"
	"github.com/bearslyricattack/CompliAd/pkg/models"
)

// Catalog holds the constructed extractors and hands out the ordered
// strategy plan for each content kind. Plans are static data; the
// feature flags only decide which optional strategies are present.
type Catalog struct {
	cfg config.PipelineConfig
	ocr OCR

	webPage  Profile
	youTube  Profile
	mediaURL Profile
	image    Profile
	audio    Profile
	video    Profile
}

// NewCatalog builds every extractor once from the shared services.
// pool may be nil when the headless browser is disabled.
func NewCatalog(cfg config.PipelineConfig, f *fetcher.Fetcher, ocr OCR, transcriber Transcriber, pool *BrowserPool) *Catalog {
	ytClient := &youtube.Client{}

	webStrategies := []Extractor{
		NewReaderProxy(f, cfg.ReaderProxyURL),
		NewReadabilityLocal(f),
	}
	if cfg.EnableHeadlessBrowser && pool != nil {
		webStrategies = append(webStrategies,
			NewHeadlessBrowser(pool, time.Duration(cfg.FetchTimeoutSeconds)*time.Second))
	}
	webStrategies = append(webStrategies, NewMetadataOnly(f))

	ytStrategies := []Extractor{
		NewCaptionTrack(ytClient, f),
		NewOEmbed(f),
	}
	if cfg.EnableAudioDownload {
		ytStrategies = append(ytStrategies, NewAudioDownloader(
			ytClient, transcriber,
			time.Duration(cfg.AudioDownloadTimeoutSeconds)*time.Second,
			cfg.MaxMediaBytes(),
		))
	}

	return &Catalog{
		cfg: cfg,
		ocr: ocr,
		webPage: Profile{
			SourceType:    models.SourceTypeBlog,
			ContentFormat: models.ContentFormatArticle,
			Strategies:    webStrategies,
		},
		youTube: Profile{
			SourceType:    models.SourceTypeYouTube,
			ContentFormat: models.ContentFormatSpeech,
			Strategies:    ytStrategies,
		},
		mediaURL: Profile{
			SourceType:    models.SourceTypeMedia,
			ContentFormat: models.ContentFormatSpeech,
			Strategies:    []Extractor{NewMediaURL(f, transcriber)},
		},
		image: Profile{
			SourceType:    models.SourceTypeUpload,
			ContentFormat: models.ContentFormatArticle,
			Strategies:    []Extractor{NewImageOCR(ocr, cfg.OCRLanguages)},
		},
		audio: Profile{
			SourceType:    models.SourceTypeTranscript,
			ContentFormat: models.ContentFormatSpeech,
			Strategies:    []Extractor{NewAudioTranscribe(transcriber)},
		},
		video: Profile{
			SourceType:    models.SourceTypeTranscript,
			ContentFormat: models.ContentFormatSpeech,
			Strategies:    []Extractor{NewAudioTranscribe(transcriber)},
		},
	}
}

// Profile returns the strategy plan for a kind. Documents are planned
// per file via DocumentProfile.
func (c *Catalog) Profile(kind models.Kind) (Profile, bool) {
	switch kind {
	case models.KindWebPage:
		return c.webPage, true
	case models.KindYouTube:
		return c.youTube, true
	case models.KindMediaURL:
		return c.mediaURL, true
	case models.KindImage:
		return c.image, true
	case models.KindAudio:
		return c.audio, true
	case models.KindVideo:
		return c.video, true
	default:
		return Profile{}, false
	}
}

// DocumentProfile picks the document extractor by MIME type.
func (c *Catalog) DocumentProfile(mime, filename string) Profile {
	profile := Profile{
		SourceType:    models.SourceTypeUpload,
		ContentFormat: models.ContentFormatArticle,
	}
	switch {
	case strings.Contains(mime, "pdf") || strings.HasSuffix(strings.ToLower(filename), ".pdf"):
		profile.Strategies = []Extractor{
			NewPDFExtractor(c.ocr, c.cfg.MinPDFChars, c.cfg.MaxPDFPages, c.cfg.OCRLanguages),
		}
	case strings.Contains(mime, "officedocument.wordprocessingml") || strings.HasSuffix(strings.ToLower(filename), ".docx"):
		profile.Strategies = []Extractor{NewDocxExtractor()}
	default:
		profile.Strategies = []Extractor{NewDocExtractor()}
	}
	return profile
}
