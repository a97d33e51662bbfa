package models

// Source types of extracted content.
const (
	SourceTypeBlog       = "blog"
	SourceTypeYouTube    = "youtube"
	SourceTypeMedia      = "media"
	SourceTypeUpload     = "upload"
	SourceTypeTranscript = "transcript"
)

// Content formats.
const (
	ContentFormatArticle = "article"
	ContentFormatSpeech  = "speech"
)

// Languages emitted by the metadata detector.
const (
	LanguageEnglish = "en"
	LanguageHindi   = "hi"
	LanguageMixed   = "mixed"
	LanguageUnknown = "unknown"
)

// ExtractedContent is the pipeline's working representation of one input.
// It is built by an extractor and enriched in place by the cleaner, the
// metadata detector, the translator and the claims reducer.
type ExtractedContent struct {
	Raw              string `json:"raw"`
	Cleaned          string `json:"cleaned"`
	Translated       string `json:"translated,omitempty"`
	SourceType       string `json:"source_type"`
	ContentFormat    string `json:"content_format"`
	ExtractionMethod string `json:"extraction_method"`
	Language         string `json:"language"`
}

// ContentMetadata is the detector's summary of one ExtractedContent.
type ContentMetadata struct {
	SourceType       string `json:"source_type"`
	ContentFormat    string `json:"content_format"`
	Language         string `json:"language"`
	ExtractionMethod string `json:"extraction_method"`
}
