package models

// Kind classifies an input after fingerprinting.
type Kind string

const (
	KindText     Kind = "text"
	KindWebPage  Kind = "webpage"
	KindYouTube  Kind = "youtube"
	KindMediaURL Kind = "media_url"
	KindImage    Kind = "image"
	KindAudio    Kind = "audio"
	KindVideo    Kind = "video"
	KindDocument Kind = "document"
)

// Input is the tagged union accepted by the audit pipeline.
// Exactly one of Text, URL or File is expected to be set.
type Input struct {
	Text string     `json:"text,omitempty"`
	URL  string     `json:"url,omitempty"`
	File *FileInput `json:"-"`
}

// FileInput carries an uploaded file.
type FileInput struct {
	Bytes    []byte
	Filename string
	MIME     string
}

// Jurisdiction selects the rule pack.
type Jurisdiction struct {
	Country string `json:"country"`
	Region  string `json:"region,omitempty"`
}

// Options are the per-request audit options.
type Options struct {
	UserID       string       `json:"userId"`
	Category     string       `json:"category"`
	Jurisdiction Jurisdiction `json:"jurisdiction"`
	AnalysisMode string       `json:"analysisMode"`
}
