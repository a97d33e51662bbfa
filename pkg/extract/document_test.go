package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ocrFunc func(ctx context.Context, image []byte, mime, languages string) (string, error)

func (f ocrFunc) RecognizeText(ctx context.Context, image []byte, mime, languages string) (string, error) {
	return f(ctx, image, mime, languages)
}

func writePages(t *testing.T, dir string, contents ...string) []string {
	t.Helper()
	var pages []string
	for i, c := range contents {
		page := filepath.Join(dir, "page-"+string(rune('1'+i))+".png")
		require.NoError(t, os.WriteFile(page, []byte(c), 0o600))
		pages = append(pages, page)
	}
	return pages
}

func TestPDFExtractorKeepsSufficientEmbeddedText(t *testing.T) {
	e := NewPDFExtractor(noopOCR{}, 10, 5, "eng")
	rendered := false
	e.render = func(context.Context, string, string, int) ([]string, error) {
		rendered = true
		return nil, nil
	}

	got, err := e.extractFrom(context.Background(), "exactly10c", nil)
	require.NoError(t, err)
	assert.Equal(t, "exactly10c", got)
	assert.False(t, rendered, "embedded text at the threshold must not trigger rendering")
}

func TestPDFExtractorOCRsBelowThreshold(t *testing.T) {
	var mimes, langs []string
	ocr := ocrFunc(func(_ context.Context, image []byte, mime, languages string) (string, error) {
		mimes = append(mimes, mime)
		langs = append(langs, languages)
		return "recognized " + string(image), nil
	})

	e := NewPDFExtractor(ocr, 10, 5, "eng+hin")
	e.render = func(_ context.Context, dir, _ string, _ int) ([]string, error) {
		return writePages(t, dir, "one", "two"), nil
	}

	got, err := e.extractFrom(context.Background(), "too short", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "recognized one\n\nrecognized two", got)
	assert.Equal(t, []string{"image/png", "image/png"}, mimes)
	assert.Equal(t, []string{"eng+hin", "eng+hin"}, langs)
}

func TestPDFExtractorKeepsEmbeddedWhenRenderFails(t *testing.T) {
	e := NewPDFExtractor(noopOCR{}, 500, 5, "eng")
	e.render = func(context.Context, string, string, int) ([]string, error) {
		return nil, errors.New("pdftoppm missing")
	}

	got, err := e.extractFrom(context.Background(), "partial text layer", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "partial text layer", got)
}

func TestPDFExtractorFailsWithoutAnyText(t *testing.T) {
	e := NewPDFExtractor(noopOCR{}, 500, 5, "eng")
	e.render = func(context.Context, string, string, int) ([]string, error) {
		return nil, errors.New("pdftoppm missing")
	}

	_, err := e.extractFrom(context.Background(), "", []byte("%PDF"))
	assert.Error(t, err)
}

func TestPdftoppmArgsCapPages(t *testing.T) {
	got := pdftoppmArgs(25, "in.pdf", "page")
	assert.Equal(t, []string{"-png", "-r", "144", "-l", "25", "in.pdf", "page"}, got)
}

func TestPDFExtractorCancellationRemovesTempFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var workDir string
	e := NewPDFExtractor(noopOCR{}, 10, 5, "eng")
	e.render = func(_ context.Context, dir, _ string, _ int) ([]string, error) {
		workDir = dir
		pages := writePages(t, dir, "one")
		cancel()
		return pages, nil
	}

	_, err := e.extractFrom(ctx, "", []byte("%PDF"))
	require.ErrorIs(t, err, context.Canceled)

	require.NotEmpty(t, workDir)
	_, statErr := os.Stat(workDir)
	assert.True(t, os.IsNotExist(statErr), "temp directory must be removed on cancellation")
}

func TestDocExtractorLeavesNoTempFiles(t *testing.T) {
	pattern := filepath.Join(os.TempDir(), "compliad-doc-*")
	before, err := filepath.Glob(pattern)
	require.NoError(t, err)

	e := NewDocExtractor()
	_, _ = e.Extract(context.Background(), Source{Data: []byte("not a real doc")})

	after, err := filepath.Glob(pattern)
	require.NoError(t, err)
	assert.ElementsMatch(t, before, after)
}
