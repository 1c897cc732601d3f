// Package pdfexport lays out a rendered invoice document as an A4 PDF.
package pdfexport

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sangkips/quickbill-api/internal/domain/entity"
	"go.uber.org/zap"
)

const ContentType = "application/pdf"

var (
	// ErrDocumentUnavailable is returned when there is no document to export.
	ErrDocumentUnavailable = errors.New("document unavailable")
	// ErrConversionFailed wraps failures of the PDF generator.
	ErrConversionFailed = errors.New("pdf conversion failed")
	// ErrTooManyPages is returned when the layout exceeds the page cap.
	ErrTooManyPages = errors.New("document exceeds the page limit")
)

// Artifact is a generated file.
type Artifact struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"-"`
	Size        int64  `json:"size"`
	PageCount   int    `json:"page_count"`
	Checksum    string `json:"checksum"`
}

// Options configure an Exporter.
type Options struct {
	// MaxPages caps the page count. Zero means unlimited.
	MaxPages int
	Logger   *zap.Logger
}

// Exporter builds PDFs from documents. It holds no per-export state and is
// safe for concurrent use.
type Exporter struct {
	maxPages int
	logger   *zap.Logger
}

// NewExporter creates a new exporter
func NewExporter(opts Options) *Exporter {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{maxPages: opts.MaxPages, logger: log.Named("pdfexport")}
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName returns the download name for an invoice number,
// e.g. "factura-F-2024-001.pdf".
func FileName(invoiceNumber string) string {
	name := strings.Trim(unsafeName.ReplaceAllString(strings.TrimSpace(invoiceNumber), "-"), "-.")
	if name == "" {
		return "factura.pdf"
	}
	return "factura-" + name + ".pdf"
}

// Export renders doc into a PDF named outputName. It never returns a
// partial artifact together with a nil error.
func (e *Exporter) Export(ctx context.Context, doc *entity.Document, outputName string) (*Artifact, error) {
	if doc == nil {
		return nil, ErrDocumentUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := newLayout(doc).draw()
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}

	pages := pdf.PageNo()
	if e.maxPages > 0 && pages > e.maxPages {
		return nil, fmt.Errorf("%w: %d pages, limit %d", ErrTooManyPages, pages, e.maxPages)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}

	if pages > 1 {
		e.logger.Info("multi-page invoice exported",
			zap.String("invoice_number", doc.Meta.Number),
			zap.Int("pages", pages),
			zap.Int("rows", len(doc.Rows)),
		)
	}

	sum := sha256.Sum256(buf.Bytes())
	return &Artifact{
		Name:        outputName,
		ContentType: ContentType,
		Content:     buf.Bytes(),
		Size:        int64(buf.Len()),
		PageCount:   pages,
		Checksum:    hex.EncodeToString(sum[:]),
	}, nil
}
