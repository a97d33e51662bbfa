package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(timeout time.Duration, maxBytes int64) *Fetcher {
	return New(timeout, maxBytes, 2, 5*time.Millisecond)
}

func TestGetReturnsBodyAndMIME(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	res, err := newTestFetcher(time.Second, 1<<20).Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", string(res.Bytes))
	assert.Contains(t, res.MIME, "text/html")
}

func TestGetRotatesUserAgents(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("User-Agent"))
	}))
	defer srv.Close()

	f := newTestFetcher(time.Second, 1<<20)
	for i := 0; i < 3; i++ {
		_, err := f.Get(context.Background(), srv.URL)
		require.NoError(t, err)
	}

	require.Len(t, seen, 3)
	assert.NotEqual(t, seen[0], seen[1])
	assert.NotEqual(t, seen[1], seen[2])
}

func TestGet403IsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestFetcher(time.Second, 1<<20).Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusForbidden))
	assert.Equal(t, int32(1), calls.Load(), "403 must not be retried")
}

func TestGet5xxIsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	res, err := newTestFetcher(time.Second, 1<<20).Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "recovered", string(res.Bytes))
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := newTestFetcher(50*time.Millisecond, 1<<20).Get(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrTimeout)
}

func TestGetPayloadTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	_, err := newTestFetcher(time.Second, 1024).Get(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestGetTextDecodesCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("नमस्ते"))
	}))
	defer srv.Close()

	text, mime, err := newTestFetcher(time.Second, 1<<20).GetText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "नमस्ते", text)
	assert.Contains(t, mime, "text/plain")
}
