package cmd

import (
	"context"
	"fmt"

	"fleetinvoice/internal/config"
	"fleetinvoice/internal/pdftext"
	"fleetinvoice/internal/summary"
)

// buildAcquirer constructs the text acquisition stage from configuration.
// The default engine is the local poppler/tesseract toolchain; OCR_ENGINE=vision
// switches to Google Cloud Vision.
func buildAcquirer(ctx context.Context, cfg *config.Config) (pdftext.Acquirer, error) {
	pcfg := pdftext.Config{
		MinTextLength: cfg.MinTextLength,
		DPI:           cfg.OCRDPI,
		Pdftoppm:      cfg.PdftoppmBin,
		Tesseract:     cfg.TesseractBin,
		Lang:          cfg.TesseractLang,
	}

	switch cfg.OCREngine {
	case config.OCREngineVision:
		engine, err := pdftext.NewVisionEngine(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create Vision OCR engine: %w", err)
		}
		return pdftext.NewExtractorWithEngine(pcfg, engine), nil
	default:
		return pdftext.NewExtractor(pcfg), nil
	}
}

// buildExtractor constructs the extraction oracle from configuration. The
// default backend is OpenAI; EXTRACTOR=documentai switches to Document AI.
func buildExtractor(ctx context.Context, cfg *config.Config) (summary.Extractor, error) {
	switch cfg.Extractor {
	case config.ExtractorDocumentAI:
		extractor, err := summary.NewDocumentAIExtractor(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create Document AI extractor: %w", err)
		}
		return extractor, nil
	default:
		extractor, err := summary.NewOpenAIExtractor(cfg.OpenAIAPIKey, summary.OpenAIConfig{
			Model:        cfg.OpenAIModel,
			MaxPromptLen: cfg.PromptMaxLen,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI extractor: %w", err)
		}
		return extractor, nil
	}
}

// probeOCREngine verifies the local OCR toolchain exists before a long batch
// run. A no-op for remote engines, which surface availability problems on
// first use instead.
func probeOCREngine(cfg *config.Config) error {
	if cfg.OCREngine == config.OCREngineVision {
		return nil
	}
	engine := pdftext.NewLocalEngine(pdftext.Config{
		Pdftoppm:  cfg.PdftoppmBin,
		Tesseract: cfg.TesseractBin,
	}, nil)
	return engine.Probe()
}
