package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bearslyricattack/CompliAd/pkg/fetcher"
)

func testFetcher() *fetcher.Fetcher {
	return fetcher.New(5*time.Second, 1<<20, 0, time.Millisecond)
}

func articleHTML() string {
	para := "The clinical study enrolled over four hundred participants and tracked their outcomes for a full year of treatment. "
	return fmt.Sprintf(`<!DOCTYPE html>
<html><head><title>Study results</title></head>
<body>
<nav>Home | About | Contact</nav>
<article><h1>Study results</h1><p>%s</p><p>%s</p><p>%s</p></article>
<footer>Privacy Policy</footer>
<script>console.log("tracking")</script>
</body></html>`, strings.Repeat(para, 3), strings.Repeat(para, 3), strings.Repeat(para, 3))
}

func TestReaderProxyExtract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "Plain rendering of the target page with all the advertised claims intact.")
	}))
	defer server.Close()

	e := NewReaderProxy(testFetcher(), server.URL+"/")
	got, err := e.Extract(context.Background(), Source{URL: "http://example.com/post"})
	require.NoError(t, err)
	assert.Contains(t, got, "advertised claims")
}

func TestReaderProxyRequiresConfiguration(t *testing.T) {
	e := NewReaderProxy(testFetcher(), "")
	_, err := e.Extract(context.Background(), Source{URL: "http://example.com"})
	assert.Error(t, err)
}

func TestReaderProxyEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
	}))
	defer server.Close()

	e := NewReaderProxy(testFetcher(), server.URL+"/")
	_, err := e.Extract(context.Background(), Source{URL: "http://example.com"})
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestReadabilityLocalExtractsArticleBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, articleHTML())
	}))
	defer server.Close()

	e := NewReadabilityLocal(testFetcher())
	got, err := e.Extract(context.Background(), Source{URL: server.URL})
	require.NoError(t, err)

	assert.Contains(t, got, "four hundred participants")
	assert.NotContains(t, got, "console.log")
}

func TestReadabilityLocalFallsBackToBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><div>Nothing but a bare div with a single advertising sentence inside it.</div></body></html>`)
	}))
	defer server.Close()

	e := NewReadabilityLocal(testFetcher())
	got, err := e.Extract(context.Background(), Source{URL: server.URL})
	require.NoError(t, err)
	assert.Contains(t, got, "advertising sentence")
}

func TestMetadataOnlyExtract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head>
<title>Miracle tonic</title>
<meta name="description" content="Cures everything in 7 days">
</head><body></body></html>`)
	}))
	defer server.Close()

	e := NewMetadataOnly(testFetcher())
	got, err := e.Extract(context.Background(), Source{URL: server.URL})
	require.NoError(t, err)

	assert.Equal(t, "Title: Miracle tonic; Description: Cures everything in 7 days", got)
	assert.True(t, e.MetadataOnly())
}

func TestMetadataOnlyUsesOpenGraphFallbacks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head>
<meta property="og:title" content="OG tonic">
<meta property="og:description" content="OG description">
</head><body></body></html>`)
	}))
	defer server.Close()

	e := NewMetadataOnly(testFetcher())
	got, err := e.Extract(context.Background(), Source{URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, "Title: OG tonic; Description: OG description", got)
}

func TestMetadataOnlyRecoversFrom403Body(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `<html><head>
<title>MiracleCure Tonic Official Site</title>
<meta name="description" content="Guaranteed relief from joint pain">
</head><body>Access denied</body></html>`)
	}))
	defer server.Close()

	e := NewMetadataOnly(testFetcher())
	got, err := e.Extract(context.Background(), Source{URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, "Title: MiracleCure Tonic Official Site; Description: Guaranteed relief from joint pain", got)
}

func TestMetadataOnlyStillFailsOnOther4xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `<html><head><title>Not found</title></head></html>`)
	}))
	defer server.Close()

	e := NewMetadataOnly(testFetcher())
	_, err := e.Extract(context.Background(), Source{URL: server.URL})
	require.Error(t, err)
	assert.True(t, fetcher.IsStatus(err, http.StatusNotFound))
}

func TestWebPlanDegradesToMetadataOn403(t *testing.T) {
	// Origin that answers 403 on the first byte but still carries meta
	// tags on the error page: the first two strategies fail, the
	// metadata fallback produces a best-effort result.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `<html><head>
<title>MiracleCure Tonic</title>
<meta name="description" content="Cures diabetes in 30 days">
</head><body>Forbidden</body></html>`)
	}))
	defer server.Close()

	f := testFetcher()
	profile := Profile{
		SourceType:    "blog",
		ContentFormat: "article",
		Strategies: []Extractor{
			NewReaderProxy(f, server.URL+"/"),
			NewReadabilityLocal(f),
			NewMetadataOnly(f),
		},
	}

	got, err := NewRunner().Run(context.Background(), profile, Source{URL: server.URL})
	require.NoError(t, err)

	assert.Equal(t, MethodMetadataOnly, got.ExtractionMethod)
	assert.True(t, strings.HasPrefix(got.Cleaned, "Title: "))
	assert.Contains(t, got.Cleaned, "MiracleCure Tonic")
}

func TestMetadataOnlyNoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head></head><body><p>text without metadata</p></body></html>`)
	}))
	defer server.Close()

	e := NewMetadataOnly(testFetcher())
	_, err := e.Extract(context.Background(), Source{URL: server.URL})
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestSqueezeText(t *testing.T) {
	got := squeezeText("  first   line  \n\n\n  second\tline  \n")
	assert.Equal(t, "first line\nsecond line", got)
}
