package pdftext

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"fleetinvoice/internal/logger"
)

// LocalEngine performs optical recognition with the poppler/tesseract
// toolchain: each page is rasterized with pdftoppm and read with tesseract.
type LocalEngine struct {
	cfg    Config
	runner Runner
	log    zerolog.Logger
}

// NewLocalEngine creates a LocalEngine. The runner seam exists so tests can
// stub the external binaries; passing nil uses real command execution.
func NewLocalEngine(cfg Config, runner Runner) *LocalEngine {
	if runner == nil {
		runner = execRunner{log: logger.WithComponent("pdftext-ocr")}
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = DefaultConfig().DPI
	}
	return &LocalEngine{
		cfg:    cfg,
		runner: runner,
		log:    logger.WithComponent("pdftext-ocr"),
	}
}

// Probe verifies the toolchain binaries exist on PATH. Called before a batch
// starts so a missing engine surfaces as a configuration error up front
// instead of failing every scanned document.
func (l *LocalEngine) Probe() error {
	const op = "Probe"
	for _, bin := range []string{l.cfg.Pdftoppm, l.cfg.Tesseract} {
		if _, err := exec.LookPath(bin); err != nil {
			return NewAcquireError(op, ErrEngineUnavailable, bin+" not found on PATH")
		}
	}
	return nil
}

// Recognize rasterizes every page at the configured DPI and runs tesseract
// over each image, concatenating the per-page text with PageBreakMarker.
// Page images are written to a temp directory scoped to this call and
// removed on every exit path.
func (l *LocalEngine) Recognize(ctx context.Context, pdfBytes []byte) (string, error) {
	const op = "Recognize"

	tmpDir, err := os.MkdirTemp("", "fleetinvoice-ocr-*")
	if err != nil {
		return "", NewAcquireError(op, err, "failed to create temp dir")
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			l.log.Warn().Err(rmErr).Str("dir", tmpDir).Msg("Failed to remove OCR temp dir")
		}
	}()

	pdfPath := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(pdfPath, pdfBytes, 0600); err != nil {
		return "", NewAcquireError(op, err, "failed to write temp PDF")
	}

	// pdftoppm -r <dpi> -png input.pdf <tmp>/page
	prefix := filepath.Join(tmpDir, "page")
	_, errb, err := l.runner.Run(ctx, l.cfg.Pdftoppm, "-r", strconv.Itoa(l.cfg.DPI), "-png", pdfPath, prefix)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", NewAcquireError(op, ErrEngineUnavailable, l.cfg.Pdftoppm+" not found on PATH")
		}
		return "", NewAcquireError(op, err, string(errb))
	}

	// pdftoppm numbers pages as page-1.png, page-2.png, ...
	pages, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(pages)
	if len(pages) == 0 {
		return "", NewAcquireError(op, ErrInvalidPDF, "pdftoppm produced no page images")
	}

	var b strings.Builder
	for _, img := range pages {
		// tesseract <img> stdout -l <lang>
		out, errb, err := l.runner.Run(ctx, l.cfg.Tesseract, img, "stdout", "-l", l.cfg.Lang)
		if err != nil {
			if errors.Is(err, exec.ErrNotFound) {
				return "", NewAcquireError(op, ErrEngineUnavailable, l.cfg.Tesseract+" not found on PATH")
			}
			l.log.Warn().
				Err(err).
				Str("page_image", filepath.Base(img)).
				Str("stderr", truncate(string(errb), 2<<10)).
				Msg("tesseract failed on page, skipping")
			continue
		}
		if strings.TrimSpace(string(out)) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(PageBreakMarker)
		}
		b.Write(out)
	}

	l.log.Info().
		Int("pages", len(pages)).
		Int("text_length", b.Len()).
		Msg("OCR completed")

	return b.String(), nil
}
