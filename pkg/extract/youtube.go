package extract

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	youtube "github.com/kkdai/youtube/v2"

	"github.com/bearslyricattack/CompliAd/pkg/fetcher"
	"github.com/bearslyricattack/CompliAd/pkg/logger"
	"github.com/bearslyricattack/CompliAd/pkg/procutil"
)

// ErrNoCaptions is returned when a video publishes no caption track.
var ErrNoCaptions = errors.New("no caption track published")

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/videos/|embed/|youtu\.be/|/v/|/e/|shorts/)([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`^([A-Za-z0-9_-]{11})$`),
}

// VideoID extracts the 11-character YouTube video id from a URL.
func VideoID(rawURL string) (string, error) {
	for _, p := range videoIDPatterns {
		if m := p.FindStringSubmatch(rawURL); m != nil {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("no video id in %q", rawURL)
}

// CaptionTrack fetches the published captions of a YouTube video and
// concatenates the segments.
type CaptionTrack struct {
	client  *youtube.Client
	fetcher *fetcher.Fetcher
	log     logger.Logger
}

// NewCaptionTrack creates the caption extractor.
func NewCaptionTrack(client *youtube.Client, f *fetcher.Fetcher) *CaptionTrack {
	return &CaptionTrack{
		client:  client,
		fetcher: f,
		log:     logger.GetLogger().WithField("component", "caption_track"),
	}
}

func (e *CaptionTrack) Method() string { return MethodCaptionTrack }

func (e *CaptionTrack) Extract(ctx context.Context, src Source) (string, error) {
	id, err := VideoID(src.URL)
	if err != nil {
		return "", err
	}
	video, err := e.client.GetVideoContext(ctx, id)
	if err != nil {
		return "", fmt.Errorf("video metadata: %w", err)
	}
	if len(video.CaptionTracks) == 0 {
		return "", ErrNoCaptions
	}

	track := pickCaptionTrack(video.CaptionTracks)
	captionURL := plainTimedTextURL(track.BaseURL)
	res, err := e.fetcher.Get(ctx, captionURL)
	if err != nil {
		return "", fmt.Errorf("caption track fetch: %w", err)
	}

	text, err := parseTimedText(res.Bytes)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", ErrNoCaptions
	}
	e.log.Info("Caption track extracted", logger.Fields{
		"video_id": id,
		"language": track.LanguageCode,
		"chars":    len(text),
	})
	return text, nil
}

// pickCaptionTrack prefers an English track, then any manual track,
// then the first one.
func pickCaptionTrack(tracks []youtube.CaptionTrack) youtube.CaptionTrack {
	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, "en") && t.Kind != "asr" {
			return t
		}
	}
	for _, t := range tracks {
		if t.Kind != "asr" {
			return t
		}
	}
	return tracks[0]
}

// plainTimedTextURL strips the srv3 format parameter so the endpoint
// answers the simple XML variant.
func plainTimedTextURL(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	q := u.Query()
	if q.Get("fmt") == "srv3" {
		q.Del("fmt")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

type timedText struct {
	Texts []struct {
		Content string `xml:",chardata"`
	} `xml:"text"`
}

func parseTimedText(data []byte) (string, error) {
	var doc timedText
	if err := xml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("parse timedtext: %w", err)
	}
	var parts []string
	for _, t := range doc.Texts {
		segment := strings.TrimSpace(html.UnescapeString(t.Content))
		if segment != "" {
			parts = append(parts, segment)
		}
	}
	return strings.Join(parts, " "), nil
}

// OEmbed fetches public metadata (title, channel) for a YouTube URL
// from the oembed endpoint. Metadata-only: exempt from the minimum
// cleaned length.
type OEmbed struct {
	fetcher *fetcher.Fetcher
}

// NewOEmbed creates the oembed extractor.
func NewOEmbed(f *fetcher.Fetcher) *OEmbed {
	return &OEmbed{fetcher: f}
}

func (e *OEmbed) Method() string     { return MethodOEmbed }
func (e *OEmbed) MetadataOnly() bool { return true }

func (e *OEmbed) Extract(ctx context.Context, src Source) (string, error) {
	endpoint := "https://www.youtube.com/oembed?format=json&url=" + url.QueryEscape(src.URL)
	res, err := e.fetcher.Get(ctx, endpoint)
	if err != nil {
		return "", err
	}
	var payload struct {
		Title      string `json:"title"`
		AuthorName string `json:"author_name"`
	}
	if err := json.Unmarshal(res.Bytes, &payload); err != nil {
		return "", fmt.Errorf("parse oembed: %w", err)
	}
	if payload.Title == "" && payload.AuthorName == "" {
		return "", ErrNoContent
	}
	return fmt.Sprintf("Title: %s; Channel: %s", payload.Title, payload.AuthorName), nil
}

// AudioDownloader downloads the best audio stream of a YouTube video,
// transcodes it to MP3, and hands it to the transcriber. Feature-gated;
// off by default in production.
type AudioDownloader struct {
	client          *youtube.Client
	transcriber     Transcriber
	downloadTimeout time.Duration
	maxBytes        int64
	log             logger.Logger
}

// NewAudioDownloader creates the download-and-transcribe extractor.
func NewAudioDownloader(client *youtube.Client, t Transcriber, downloadTimeout time.Duration, maxBytes int64) *AudioDownloader {
	return &AudioDownloader{
		client:          client,
		transcriber:     t,
		downloadTimeout: downloadTimeout,
		maxBytes:        maxBytes,
		log:             logger.GetLogger().WithField("component", "audio_download"),
	}
}

func (e *AudioDownloader) Method() string { return MethodAudioDownload }

func (e *AudioDownloader) Extract(ctx context.Context, src Source) (string, error) {
	id, err := VideoID(src.URL)
	if err != nil {
		return "", err
	}

	mp3Path, cleanup, err := e.download(ctx, id)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		return "", err
	}

	audio, err := os.ReadFile(mp3Path)
	if err != nil {
		return "", fmt.Errorf("read transcoded audio: %w", err)
	}
	if len(audio) == 0 {
		return "", errors.New("transcoded audio is empty")
	}

	text, err := e.transcriber.Transcribe(ctx, audio, filepath.Base(mp3Path))
	if err != nil {
		return "", fmt.Errorf("transcribe downloaded audio: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoContent
	}
	return text, nil
}

// download pulls the best audio format into a per-request temp
// directory and transcodes it to MP3. The returned cleanup removes the
// directory on every exit path, cancellation included.
func (e *AudioDownloader) download(ctx context.Context, videoID string) (string, func(), error) {
	dlCtx, cancel := context.WithTimeout(ctx, e.downloadTimeout)
	defer cancel()

	video, err := e.client.GetVideoContext(dlCtx, videoID)
	if err != nil {
		return "", nil, fmt.Errorf("video metadata: %w", err)
	}
	formats := video.Formats.Type("audio")
	if len(formats) == 0 {
		return "", nil, errors.New("no audio format available")
	}
	formats.Sort()
	format := &formats[0]

	dir, err := os.MkdirTemp("", "compliad-audio-"+uuid.NewString())
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	stream, size, err := e.client.GetStreamContext(dlCtx, video, format)
	if err != nil {
		return "", cleanup, fmt.Errorf("audio stream: %w", err)
	}
	defer stream.Close()
	if size > e.maxBytes {
		return "", cleanup, fmt.Errorf("audio stream %s exceeds cap", humanize.Bytes(uint64(size)))
	}

	rawPath := filepath.Join(dir, "audio.raw")
	out, err := os.Create(rawPath)
	if err != nil {
		return "", cleanup, err
	}
	written, err := io.Copy(out, io.LimitReader(stream, e.maxBytes+1))
	out.Close()
	if err != nil {
		return "", cleanup, fmt.Errorf("download audio: %w", err)
	}
	if written == 0 {
		return "", cleanup, errors.New("downloaded audio is empty")
	}
	if written > e.maxBytes {
		return "", cleanup, fmt.Errorf("audio exceeds cap after %s", humanize.Bytes(uint64(written)))
	}

	mp3Path := filepath.Join(dir, "audio.mp3")
	if _, err := procutil.Run(dlCtx, "ffmpeg", "-y", "-i", rawPath, "-vn", "-acodec", "libmp3lame", "-q:a", "4", mp3Path); err != nil {
		return "", cleanup, fmt.Errorf("transcode to mp3: %w", err)
	}
	info, err := os.Stat(mp3Path)
	if err != nil || info.Size() == 0 {
		return "", cleanup, errors.New("transcoded mp3 missing or empty")
	}

	e.log.Info("Audio downloaded and transcoded", logger.Fields{
		"video_id": videoID,
		"size":     humanize.Bytes(uint64(info.Size())),
	})
	return mp3Path, cleanup, nil
}
