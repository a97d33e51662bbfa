package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"golang.org/x/net/html/charset"

	"github.com/bearslyricattack/CompliAd/pkg/config"
	"github.com/bearslyricattack/CompliAd/pkg/logger"
)

// errorBodyCap bounds how much of an error response body is kept on
// the HTTPError for metadata recovery.
const errorBodyCap = 256 << 10

// Result is one fetched resource.
type Result struct {
	Bytes    []byte
	MIME     string
	Status   int
	FinalURL string
}

// Fetcher performs bounded HTTP GETs with user-agent rotation, a hard
// deadline per attempt and a body size cap. Transient failures (5xx,
// connection errors, 429) are retried with exponential backoff; other
// 4xx statuses are surfaced immediately so the strategy layer can choose
// its own fallback.
type Fetcher struct {
	client      *http.Client
	timeout     time.Duration
	maxBytes    int64
	retryPolicy retrypolicy.RetryPolicy[*Result]
	log         logger.Logger
}

// New creates a Fetcher with explicit limits.
func New(timeout time.Duration, maxBytes int64, maxRetries int, backoffBase time.Duration) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{},
		timeout:  timeout,
		maxBytes: maxBytes,
		log:      logger.GetLogger().WithField("component", "fetcher"),
	}
	f.retryPolicy = retrypolicy.Builder[*Result]().
		HandleIf(func(_ *Result, err error) bool { return shouldRetry(err) }).
		WithBackoff(backoffBase, 16*backoffBase).
		WithMaxRetries(maxRetries).
		Build()
	return f
}

// FromConfig creates a Fetcher from the pipeline configuration.
func FromConfig(p config.PipelineConfig) *Fetcher {
	return New(
		time.Duration(p.FetchTimeoutSeconds)*time.Second,
		p.MaxMediaBytes(),
		p.MaxRetries,
		time.Duration(p.BackoffBaseMS)*time.Millisecond,
	)
}

// Get fetches url and returns the body bytes with the response MIME type.
func (f *Fetcher) Get(ctx context.Context, url string) (*Result, error) {
	return failsafe.NewExecutor[*Result](f.retryPolicy).
		WithContext(ctx).
		Get(func() (*Result, error) {
			return f.getOnce(ctx, url)
		})
}

// GetText fetches url and decodes the body to UTF-8 using the response
// charset.
func (f *Fetcher) GetText(ctx context.Context, url string) (string, string, error) {
	res, err := f.Get(ctx, url)
	if err != nil {
		return "", "", err
	}
	reader, err := charset.NewReader(bytes.NewReader(res.Bytes), res.MIME)
	if err != nil {
		return string(res.Bytes), res.MIME, nil
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return string(res.Bytes), res.MIME, nil
	}
	return string(decoded), res.MIME, nil
}

func (f *Fetcher) getOnce(ctx context.Context, rawURL string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("User-Agent", nextUserAgent())
	req.Header.Set("Accept", "*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		// Keep a bounded copy of the error page; origins that answer
		// 403 often still serve a titled HTML body worth mining.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyCap))
		return nil, &HTTPError{
			Status: resp.StatusCode,
			Body:   body,
			MIME:   resp.Header.Get("Content-Type"),
		}
	}
	if resp.ContentLength > f.maxBytes {
		return nil, ErrPayloadTooLarge
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, ErrPayloadTooLarge
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" && len(body) > 0 {
		mime = http.DetectContentType(body[:min(len(body), 512)])
	}

	f.log.Debug("Fetched URL", logger.Fields{
		"url":    rawURL,
		"status": resp.StatusCode,
		"size":   humanize.Bytes(uint64(len(body))),
		"mime":   mime,
	})

	return &Result{
		Bytes:    body,
		MIME:     mime,
		Status:   resp.StatusCode,
		FinalURL: resp.Request.URL.String(),
	}, nil
}

func shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status >= 500 || httpErr.Status == http.StatusTooManyRequests
	}
	return errors.Is(err, ErrNetwork)
}
