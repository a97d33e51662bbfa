package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"

	"github.com/bearslyricattack/CompliAd/pkg/fetcher"
)

// Container selectors tried after the readability pass, most specific
// first.
var contentSelectors = []string{
	"article",
	".post-content",
	".entry-content",
	".content",
	".main-content",
}

// ReaderProxy fetches a remote plaintext rendering of a URL. It is the
// cheapest web strategy and runs first.
type ReaderProxy struct {
	fetcher  *fetcher.Fetcher
	proxyURL string
}

// NewReaderProxy creates the proxy extractor. proxyURL is the rendering
// service prefix the target URL is appended to.
func NewReaderProxy(f *fetcher.Fetcher, proxyURL string) *ReaderProxy {
	return &ReaderProxy{fetcher: f, proxyURL: proxyURL}
}

func (e *ReaderProxy) Method() string { return MethodReaderProxy }

func (e *ReaderProxy) Extract(ctx context.Context, src Source) (string, error) {
	if e.proxyURL == "" {
		return "", fmt.Errorf("%s: no proxy configured", MethodReaderProxy)
	}
	text, _, err := e.fetcher.GetText(ctx, e.proxyURL+src.URL)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoContent
	}
	return text, nil
}

// ReadabilityLocal fetches the URL and extracts the main article body
// with a readability heuristic, falling back to known content container
// selectors.
type ReadabilityLocal struct {
	fetcher   *fetcher.Fetcher
	sanitizer *bluemonday.Policy
}

// NewReadabilityLocal creates the local readability extractor.
func NewReadabilityLocal(f *fetcher.Fetcher) *ReadabilityLocal {
	return &ReadabilityLocal{
		fetcher:   f,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (e *ReadabilityLocal) Method() string { return MethodReadability }

func (e *ReadabilityLocal) Extract(ctx context.Context, src Source) (string, error) {
	html, _, err := e.fetcher.GetText(ctx, src.URL)
	if err != nil {
		return "", err
	}

	parsedURL, _ := url.Parse(src.URL)
	article, err := readability.FromReader(strings.NewReader(html), parsedURL)
	if err == nil {
		if text := strings.TrimSpace(article.TextContent); text != "" {
			return text, nil
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, nav, header, footer, aside").Remove()

	for _, sel := range contentSelectors {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if text := squeezeText(node.Text()); text != "" {
				return text, nil
			}
		}
	}

	if body := squeezeText(doc.Find("body").Text()); body != "" {
		return body, nil
	}
	return "", ErrNoContent
}

// MetadataOnlyExtractor is the last-resort web strategy: it returns the
// page title and description read from meta tags.
type MetadataOnlyExtractor struct {
	fetcher *fetcher.Fetcher
}

// NewMetadataOnly creates the metadata-only extractor.
func NewMetadataOnly(f *fetcher.Fetcher) *MetadataOnlyExtractor {
	return &MetadataOnlyExtractor{fetcher: f}
}

func (e *MetadataOnlyExtractor) Method() string     { return MethodMetadataOnly }
func (e *MetadataOnlyExtractor) MetadataOnly() bool { return true }

func (e *MetadataOnlyExtractor) Extract(ctx context.Context, src Source) (string, error) {
	html, _, err := e.fetcher.GetText(ctx, src.URL)
	if err != nil {
		// A 403 origin usually still serves a titled error page; as the
		// last resort the metadata is mined out of that body.
		var httpErr *fetcher.HTTPError
		if errors.As(err, &httpErr) && httpErr.Status == http.StatusForbidden && len(httpErr.Body) > 0 {
			html = string(httpErr.Body)
		} else {
			return "", err
		}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title, _ = doc.Find(`meta[property="og:title"]`).Attr("content")
	}
	description, _ := doc.Find(`meta[name="description"]`).Attr("content")
	if description == "" {
		description, _ = doc.Find(`meta[property="og:description"]`).Attr("content")
	}

	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" && description == "" {
		return "", ErrNoContent
	}
	return fmt.Sprintf("Title: %s; Description: %s", title, description), nil
}

// squeezeText collapses runs of whitespace left behind by DOM text
// extraction into single spaces and newlines.
func squeezeText(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
