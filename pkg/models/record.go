package models

import "time"

// Content types persisted with an audit record.
const (
	ContentTypeText     = "text"
	ContentTypeURL      = "url"
	ContentTypeWebPage  = "webpage"
	ContentTypeImage    = "image"
	ContentTypeVideo    = "video"
	ContentTypeAudio    = "audio"
	ContentTypeDocument = "document"
)

// AuditRecord is the row handed to the audit store after a completed audit.
type AuditRecord struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	ContentType   string    `json:"contentType"`
	OriginalInput string    `json:"originalInput"`
	ExtractedText string    `json:"extractedText"`
	Transcript    string    `json:"transcript"`
	Report        *Report   `json:"auditResult"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ContentTypeForKind maps a fingerprinted kind to the persisted content type.
func ContentTypeForKind(kind Kind) string {
	switch kind {
	case KindText:
		return ContentTypeText
	case KindWebPage:
		return ContentTypeWebPage
	case KindYouTube, KindMediaURL:
		return ContentTypeURL
	case KindImage:
		return ContentTypeImage
	case KindVideo:
		return ContentTypeVideo
	case KindAudio:
		return ContentTypeAudio
	case KindDocument:
		return ContentTypeDocument
	default:
		return ContentTypeText
	}
}
