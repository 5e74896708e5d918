package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	"fleetinvoice/internal/logger"
)

// Extractor implements Acquirer: direct text-layer extraction with an
// optical recognition fallback for scanned documents.
type Extractor struct {
	cfg    Config
	engine Engine
	direct func(pdfBytes []byte) (string, error)
	log    zerolog.Logger
}

// NewExtractor creates an Extractor backed by the local poppler/tesseract
// toolchain.
func NewExtractor(cfg Config) *Extractor {
	log := logger.WithComponent("pdftext")
	return NewExtractorWithEngine(cfg, NewLocalEngine(cfg, execRunner{log: log}))
}

// NewExtractorWithEngine creates an Extractor with an explicit recognition
// engine (Cloud Vision, or a fake in tests).
func NewExtractorWithEngine(cfg Config, engine Engine) *Extractor {
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = DefaultConfig().MinTextLength
	}
	return &Extractor{
		cfg:    cfg,
		engine: engine,
		direct: directText,
		log:    logger.WithComponent("pdftext"),
	}
}

// AcquireText extracts text page by page from the PDF's text layer. If the
// result is shorter than MinTextLength the document is treated as a scan and
// pushed through the recognition engine instead.
func (e *Extractor) AcquireText(ctx context.Context, pdfBytes []byte) (string, error) {
	const op = "AcquireText"

	if len(pdfBytes) < 4 || string(pdfBytes[:4]) != "%PDF" {
		return "", NewAcquireError(op, ErrInvalidPDF, "missing PDF header")
	}

	text, err := e.direct(pdfBytes)
	if err != nil {
		e.log.Warn().Err(err).Msg("Direct text extraction failed, treating document as scanned")
		text = ""
	}

	if len(strings.TrimSpace(text)) >= e.cfg.MinTextLength {
		e.log.Debug().
			Int("text_length", len(text)).
			Msg("Direct text layer extraction succeeded")
		return text, nil
	}

	e.log.Info().
		Int("direct_length", len(strings.TrimSpace(text))).
		Int("min_length", e.cfg.MinTextLength).
		Msg("Document appears to be a scan, applying OCR")

	ocrText, err := e.engine.Recognize(ctx, pdfBytes)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(ocrText) != "" {
		return ocrText, nil
	}
	// OCR produced nothing; a thin direct text layer is still better than
	// failing the document outright.
	if strings.TrimSpace(text) != "" {
		e.log.Warn().Msg("OCR yielded no text, keeping sparse direct text layer")
		return text, nil
	}
	return "", NewAcquireError(op, ErrNoTextExtracted, "both direct extraction and OCR yielded empty text")
}

// directText reads the PDF text layer page by page, joining pages with
// PageBreakMarker. Pages without a text layer are skipped.
func directText(pdfBytes []byte) (text string, err error) {
	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(PageBreakMarker)
		}
		b.WriteString(pageText)
	}
	return b.String(), nil
}
