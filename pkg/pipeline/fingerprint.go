package pipeline

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/bearslyricattack/CompliAd/pkg/models"
)

var youtubeHosts = map[string]bool{
	"youtube.com":   true,
	"youtu.be":      true,
	"m.youtube.com": true,
}

var mediaExtensions = map[string]bool{
	".mp3": true, ".mp4": true, ".wav": true, ".m4a": true,
	".aac": true, ".ogg": true, ".flac": true, ".webm": true,
	".mov": true, ".avi": true, ".mkv": true, ".flv": true,
}

var videoPlatformHosts = map[string]bool{
	"vimeo.com":       true,
	"dailymotion.com": true,
	"twitch.tv":       true,
}

// Fingerprint classifies an input into its content kind. It is total
// over the declared input set and deterministic: the same input always
// yields the same kind.
func Fingerprint(input models.Input) (models.Kind, error) {
	if strings.TrimSpace(input.Text) != "" {
		return models.KindText, nil
	}
	if input.URL != "" {
		return fingerprintURL(input.URL)
	}
	if input.File != nil {
		return fingerprintFile(input.File)
	}
	return "", fmt.Errorf("%w: no text, url or file", ErrInputInvalid)
}

func fingerprintURL(rawURL string) (models.Kind, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: malformed url: %v", ErrInputInvalid, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported url scheme %q", ErrInputInvalid, parsed.Scheme)
	}

	host := strings.ToLower(strings.TrimPrefix(parsed.Hostname(), "www."))
	if youtubeHosts[host] {
		return models.KindYouTube, nil
	}
	if mediaExtensions[strings.ToLower(path.Ext(parsed.Path))] || videoPlatformHosts[host] {
		return models.KindMediaURL, nil
	}
	return models.KindWebPage, nil
}

func fingerprintFile(file *models.FileInput) (models.Kind, error) {
	mime := strings.ToLower(file.MIME)
	switch {
	case strings.HasPrefix(mime, "image/"):
		return models.KindImage, nil
	case strings.HasPrefix(mime, "audio/"):
		return models.KindAudio, nil
	case strings.HasPrefix(mime, "video/"):
		return models.KindVideo, nil
	case mime == "application/pdf",
		mime == "application/msword",
		mime == "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return models.KindDocument, nil
	default:
		return "", fmt.Errorf("%w: unsupported mime type %q", ErrInputInvalid, file.MIME)
	}
}
