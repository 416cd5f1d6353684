package pdftext

import (
	"context"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
)

// Embedded extracts text with a pure-Go PDF reader, for hosts without
// poppler installed. Row ordering approximates pdftotext -layout but column
// alignment is not preserved, so pdftotext stays the primary provider.
type Embedded struct{}

// NewEmbedded creates an Embedded extractor.
func NewEmbedded() *Embedded {
	return &Embedded{}
}

// ExtractText reads every page and emits one line per text row.
func (e *Embedded) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return "", eris.Wrapf(err, "pdftext: open %s", pdfPath)
	}
	defer f.Close() //nolint:errcheck

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", eris.Wrap(err, "pdftext: extraction canceled")
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", eris.Wrapf(err, "pdftext: read page %d of %s", i, pdfPath)
		}
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				words = append(words, word.S)
			}
			b.WriteString(strings.Join(words, " "))
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}
