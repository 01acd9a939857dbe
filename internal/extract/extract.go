// Package extract turns uploaded document bytes into plain text with page
// boundaries.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"paperlens/internal/models"
	"paperlens/internal/util"

	"github.com/ledongthuc/pdf"
)

type Result struct {
	Text  string
	Pages []models.PageSpan
}

type Extractor interface {
	Extract(ctx context.Context, data []byte) (Result, error)
}

const pageSeparator = "\n\n"

var pdfMagic = []byte("%PDF-")

// IsPDF reports whether data starts with the PDF header, allowing leading
// whitespace some producers emit.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), pdfMagic)
}

// PDFExtractor reads text page by page with ledongthuc/pdf. Pages are joined
// with a blank line.
type PDFExtractor struct{}

func (PDFExtractor) Extract(ctx context.Context, data []byte) (res Result, err error) {
	if !IsPDF(data) {
		return Result{}, fmt.Errorf("%w: missing %%PDF header", util.ErrUnsupportedFormat)
	}
	// The parser panics on some malformed object streams.
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = fmt.Errorf("%w: %v", util.ErrCorruptFile, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", util.ErrCorruptFile, err)
	}

	var b strings.Builder
	pages := make([]models.PageSpan, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Printf("extract: skipping page=%d err=%v", i, err)
			continue
		}
		text = util.SanitizeText(text)
		if text == "" {
			continue
		}
		if n := len(pages); n > 0 {
			b.WriteString(pageSeparator)
			pages[n-1].End = b.Len()
		}
		start := b.Len()
		b.WriteString(text)
		pages = append(pages, models.PageSpan{Number: i, Start: start, End: b.Len()})
	}
	if strings.TrimSpace(b.String()) == "" {
		return Result{}, fmt.Errorf("%w: no text layer in %d pages (OCR is not supported)", util.ErrEmptyDocument, reader.NumPage())
	}
	return Result{Text: b.String(), Pages: pages}, nil
}
