package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	docx "github.com/fumiama/go-docx"
	"github.com/google/uuid"
	pdf "github.com/ledongthuc/pdf"

	"github.com/bearslyricattack/CompliAd/pkg/logger"
	"github.com/bearslyricattack/CompliAd/pkg/procutil"
)

// renderPages renders a PDF into per-page images under dir and returns
// the image paths in page order.
type renderPages func(ctx context.Context, dir, pdfPath string, maxPages int) ([]string, error)

// PDFExtractor first tries the embedded text layer; when that yields
// fewer than minChars characters it renders pages at 2x and OCRs each
// one with the configured language hint.
type PDFExtractor struct {
	ocr       OCR
	minChars  int
	maxPages  int
	languages string
	render    renderPages
	log       logger.Logger
}

// NewPDFExtractor creates the PDF extractor.
func NewPDFExtractor(ocr OCR, minChars, maxPages int, languages string) *PDFExtractor {
	return &PDFExtractor{
		ocr:       ocr,
		minChars:  minChars,
		maxPages:  maxPages,
		languages: languages,
		render:    renderWithPdftoppm,
		log:       logger.GetLogger().WithField("component", "pdf_extract"),
	}
}

func (e *PDFExtractor) Method() string { return MethodPDFText }

func (e *PDFExtractor) Extract(ctx context.Context, src Source) (string, error) {
	return e.extractFrom(ctx, e.embeddedText(src.Data), src.Data)
}

func (e *PDFExtractor) extractFrom(ctx context.Context, embedded string, data []byte) (string, error) {
	if len(embedded) >= e.minChars {
		return embedded, nil
	}

	e.log.Info("Embedded PDF text insufficient, rendering pages for OCR", logger.Fields{
		"embedded_chars": len(embedded),
		"min_chars":      e.minChars,
	})
	scanned, err := e.ocrPages(ctx, data)
	if err != nil {
		if embedded != "" {
			// Keep whatever the text layer gave us rather than fail.
			return embedded, nil
		}
		return "", err
	}
	return scanned, nil
}

func (e *PDFExtractor) embeddedText(data []byte) string {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	textReader, err := reader.GetPlainText()
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return ""
	}
	return strings.TrimSpace(buf.String())
}

// ocrPages renders up to maxPages pages to page images and OCRs each
// one. Temp files are removed on every exit path.
func (e *PDFExtractor) ocrPages(ctx context.Context, data []byte) (string, error) {
	dir, err := os.MkdirTemp("", "compliad-pdf-"+uuid.NewString())
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	pdfPath := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(pdfPath, data, 0o600); err != nil {
		return "", err
	}

	pages, err := e.render(ctx, dir, pdfPath, e.maxPages)
	if err != nil {
		return "", fmt.Errorf("render pdf pages: %w", err)
	}
	if len(pages) == 0 {
		return "", errors.New("no pages rendered")
	}

	var parts []string
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		image, err := os.ReadFile(page)
		if err != nil {
			continue
		}
		text, err := e.ocr.RecognizeText(ctx, image, "image/png", e.languages)
		if err != nil {
			e.log.Warn("Page OCR failed", logger.Fields{"page": filepath.Base(page), "error": err.Error()})
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", ErrNoContent
	}
	return strings.Join(parts, "\n\n"), nil
}

// renderWithPdftoppm shells out to pdftoppm, capped at maxPages pages.
func renderWithPdftoppm(ctx context.Context, dir, pdfPath string, maxPages int) ([]string, error) {
	prefix := filepath.Join(dir, "page")
	if _, err := procutil.Run(ctx, "pdftoppm", pdftoppmArgs(maxPages, pdfPath, prefix)...); err != nil {
		return nil, err
	}
	pages, err := filepath.Glob(prefix + "*.png")
	if err != nil {
		return nil, err
	}
	sort.Strings(pages)
	return pages, nil
}

// 144 dpi is twice the 72 dpi base scale.
func pdftoppmArgs(maxPages int, pdfPath, prefix string) []string {
	return []string{"-png", "-r", "144", "-l", fmt.Sprintf("%d", maxPages), pdfPath, prefix}
}

// DocxExtractor reads the paragraph text of a .docx document.
type DocxExtractor struct{}

// NewDocxExtractor creates the DOCX extractor.
func NewDocxExtractor() *DocxExtractor { return &DocxExtractor{} }

func (e *DocxExtractor) Method() string { return MethodDocxText }

func (e *DocxExtractor) Extract(_ context.Context, src Source) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(src.Data), int64(len(src.Data)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}
	var parts []string
	for _, item := range doc.Document.Body.Items {
		switch block := item.(type) {
		case *docx.Paragraph:
			if text := strings.TrimSpace(block.String()); text != "" {
				parts = append(parts, text)
			}
		case *docx.Table:
			if text := strings.TrimSpace(block.String()); text != "" {
				parts = append(parts, text)
			}
		}
	}
	if len(parts) == 0 {
		return "", ErrNoContent
	}
	return strings.Join(parts, "\n"), nil
}

// DocExtractor reads legacy .doc files through antiword.
type DocExtractor struct{}

// NewDocExtractor creates the legacy-doc extractor.
func NewDocExtractor() *DocExtractor { return &DocExtractor{} }

func (e *DocExtractor) Method() string { return MethodDocText }

func (e *DocExtractor) Extract(ctx context.Context, src Source) (string, error) {
	dir, err := os.MkdirTemp("", "compliad-doc-"+uuid.NewString())
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	docPath := filepath.Join(dir, "input.doc")
	if err := os.WriteFile(docPath, src.Data, 0o600); err != nil {
		return "", err
	}
	out, err := procutil.Run(ctx, "antiword", docPath)
	if err != nil {
		return "", fmt.Errorf("antiword: %w", err)
	}
	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", ErrNoContent
	}
	return text, nil
}
