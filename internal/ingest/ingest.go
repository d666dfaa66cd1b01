// Package ingest turns an input case file into the ordered page sequence the
// pipeline consumes. The only supported source today is a PDF read via the
// pdftotext CLI; pages whose text layer is missing or too thin carry an image
// reference instead so the extraction stage can fall back to vision.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/meridian-legal/docaudit/internal/config"
	"github.com/meridian-legal/docaudit/internal/model"
)

// PageSource yields the pages of one input file.
type PageSource interface {
	Pages(ctx context.Context) ([]model.Page, error)
}

// PDFSource reads a PDF page by page.
type PDFSource struct {
	path         string
	binPath      string
	minPageChars int
}

// NewPDFSource creates a PDFSource for the file at path.
func NewPDFSource(path string, cfg config.IngestConfig) *PDFSource {
	bin := cfg.PdfToTextPath
	if bin == "" {
		bin = "pdftotext"
	}
	return &PDFSource{path: path, binPath: bin, minPageChars: cfg.MinPageChars}
}

// Pages extracts every page's text in order. Page indexes are zero-based and
// contiguous. A page with less usable text than min_page_chars keeps its raw
// text but also gets an image reference; scanned files with no text layer at
// all still produce a full page sequence.
func (s *PDFSource) Pages(ctx context.Context) ([]model.Page, error) {
	count, err := api.PageCountFile(s.path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: page count for %s", s.path)
	}
	if count == 0 {
		return nil, eris.Wrapf(model.ErrInvalidInput, "ingest: %s has no pages", s.path)
	}

	pages := make([]model.Page, 0, count)
	for n := 1; n <= count; n++ {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "ingest: cancelled")
		}
		text, err := s.pageText(ctx, n)
		if err != nil {
			return nil, err
		}

		page := model.Page{Index: n - 1, RawText: text}
		if len(strings.TrimSpace(text)) < s.minPageChars {
			page.ImageRef = fmt.Sprintf("%s#page=%d", s.path, n)
		}
		pages = append(pages, page)
	}

	zap.L().Info("ingest: read pdf",
		zap.String("path", s.path),
		zap.Int("pages", len(pages)),
	)
	return pages, nil
}

// pageText runs pdftotext -layout for a single page.
func (s *PDFSource) pageText(ctx context.Context, pageNum int) (string, error) {
	cmd := exec.CommandContext(ctx, s.binPath,
		"-layout",
		"-f", fmt.Sprint(pageNum),
		"-l", fmt.Sprint(pageNum),
		s.path, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "ingest: pdftotext failed for %s page %d: %s",
			s.path, pageNum, stderr.String())
	}
	return stdout.String(), nil
}

// TextSource wraps already-extracted page texts, one string per page. Used by
// tests and by callers that did their own OCR upstream.
type TextSource struct {
	texts []string
}

// NewTextSource creates a TextSource.
func NewTextSource(texts []string) *TextSource {
	return &TextSource{texts: texts}
}

// Pages returns the wrapped texts as a page sequence.
func (s *TextSource) Pages(_ context.Context) ([]model.Page, error) {
	if len(s.texts) == 0 {
		return nil, eris.Wrap(model.ErrInvalidInput, "ingest: no page texts")
	}
	pages := make([]model.Page, len(s.texts))
	for i, t := range s.texts {
		pages[i] = model.Page{Index: i, RawText: t}
	}
	return pages, nil
}
