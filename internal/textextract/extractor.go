package textextract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/wedding-ledger/constants"
)

var (
	// ErrUnsupportedFormat is returned for extensions other than pdf, txt and md.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrNoText means the document decoded but carried no recoverable text,
	// typically an image-only PDF.
	ErrNoText = errors.New("no text recoverable from document")
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	MaxPages  int    // 0 = no limit
}

type Result struct {
	Pages    []string
	Format   string // constants.PDF | constants.TEXT
	Method   string // "pdftotext" | "passthrough"
	Duration time.Duration
	Warnings []string
}

// Text joins the pages with a blank line between them.
func (r Result) Text() string {
	return strings.Join(r.Pages, "\n\n")
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// WithRunner swaps the command runner.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// Extract picks a strategy based on the filename extension.
func (e *Extractor) Extract(ctx context.Context, data []byte, filename string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(filename))
	e.logger.Debug("starting text extraction", "filename", filename, "ext", ext, "bytes", len(data))

	var (
		res Result
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err = e.extractPDF(ctx, data)
	case constants.TEXT:
		res = passthrough(data)
	default:
		e.logger.Warn("unsupported document extension", "filename", filename, "ext", ext)
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}
	if len(res.Pages) == 0 {
		return res, ErrNoText
	}
	e.logger.Info("text extracted", "filename", filename, "method", res.Method, "pages", len(res.Pages), "duration_ms", res.Duration.Milliseconds())
	return res, nil
}

func (e *Extractor) extractPDF(ctx context.Context, data []byte) (Result, error) {
	res := Result{Format: constants.PDF, Method: "pdftotext"}
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-")) {
		return res, fmt.Errorf("%w: missing %%PDF header", ErrNoText)
	}

	// pdftotext -layout -enc UTF-8 -eol unix [-l N] - -
	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	args = append(args, "-", "-")
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, data, args...)
	if err != nil {
		res.Warnings = append(res.Warnings, strings.TrimSpace(string(errb)))
		return res, fmt.Errorf("pdftotext: %w", err)
	}
	res.Pages = splitPages(string(out))
	return res, nil
}

func passthrough(data []byte) Result {
	res := Result{Format: constants.TEXT, Method: "passthrough"}
	s := string(data)
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "�")
		res.Warnings = append(res.Warnings, "document contained invalid UTF-8")
	}
	if strings.TrimSpace(s) != "" {
		res.Pages = []string{strings.TrimSpace(s)}
	}
	return res
}

// splitPages splits on the form feed pdftotext emits between pages and drops
// pages with no visible text.
func splitPages(text string) []string {
	var pages []string
	for _, p := range strings.Split(text, "\f") {
		p = strings.TrimRight(p, " \t\n")
		if strings.TrimSpace(p) == "" {
			continue
		}
		pages = append(pages, p)
	}
	return pages
}
