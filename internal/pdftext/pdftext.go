package pdftext

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/fcva-data/taxbook-cli/internal/config"
)

// Extractor extracts text content from PDF files.
type Extractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// NewExtractor creates an Extractor based on config.
func NewExtractor(cfg config.ExtractConfig) (Extractor, error) {
	switch cfg.Provider {
	case "pdftotext", "":
		return NewPdfToText(cfg.PdfToTextPath), nil
	case "embedded":
		return NewEmbedded(), nil
	default:
		return nil, eris.Errorf("pdftext: unknown provider %q", cfg.Provider)
	}
}
