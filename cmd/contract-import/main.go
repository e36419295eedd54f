package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/blobstore"
	"github.com/joseph-ayodele/wedding-ledger/internal/common"
	"github.com/joseph-ayodele/wedding-ledger/internal/export"
	"github.com/joseph-ayodele/wedding-ledger/internal/extraction"
	"github.com/joseph-ayodele/wedding-ledger/internal/importer"
	"github.com/joseph-ayodele/wedding-ledger/internal/ingest"
	"github.com/joseph-ayodele/wedding-ledger/internal/llm/provider"
	"github.com/joseph-ayodele/wedding-ledger/internal/repository"
	"github.com/joseph-ayodele/wedding-ledger/internal/textextract"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		inmem   = flag.Bool("inmem", false, "use in-memory SQLite database")
		dir     = flag.String("dir", "", "directory to import documents from (required)")
		docType = flag.String("type", "contract", "document type for files not under a contract/, extras-quote/ or lead-quote/ folder")
		out     = flag.String("out", "", "write the couples workbook to this XLSX path after importing")
		from    = flag.String("from", "", "export window start YYYY-MM-DD")
		to      = flag.String("to", "", "export window end YYYY-MM-DD")
		lowConf = flag.Bool("import-low-confidence", false, "also import documents whose extraction failed")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	fallback, ok := constants.ParseDocumentType(*docType)
	if !ok {
		printError("Error: --type must be contract, extras-quote or lead-quote\n")
		os.Exit(1)
	}
	validator := common.NewValidator()
	validator.Field("from", *from, common.ISODate)
	validator.Field("to", *to, common.ISODate)
	if err := common.ValidateAndReturnError(validator); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	if *inmem {
		cfg.Database.InMemory = true
	}
	logger := common.NewLogger(cfg.Log)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	ctx := context.Background()

	db, err := repository.InitDatabase(ctx, cfg.Database, cfg.Database.InMemory, logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	store := db.Store()

	blobs, err := blobstore.Open(ctx, cfg.Blob, logger)
	if err != nil {
		logger.Error("failed to open document storage", "error", err)
		os.Exit(1)
	}
	oracle, closeOracle, err := provider.New(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Error("failed to build oracle", "error", err)
		os.Exit(1)
	}
	defer func() { _ = closeOracle() }()

	text := textextract.NewExtractor(textextract.Config{
		Pdftotext: cfg.TextExtract.Pdftotext,
		MaxPages:  cfg.TextExtract.MaxPages,
	}, logger)
	extractor := extraction.NewService(text, oracle, logger)

	logger.Info("starting scan", "dir", *dir)
	results, stats, err := ingest.ScanDirectory(ctx, *dir, ingest.ScanOptions{
		DocumentType: fallback,
		SkipHidden:   true,
		MaxBytes:     cfg.Import.MaxUploadBytes,
	}, logger)
	if err != nil {
		logger.Error("failed to scan directory", "error", err)
		os.Exit(1)
	}
	var docs []ingest.Document
	for _, r := range results {
		if r.Document != nil {
			docs = append(docs, *r.Document)
		}
	}
	logger.Info("scan complete",
		"documents", len(docs),
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated)

	// extraction is independent per document; the import below is not
	items := make([]importer.BatchItem, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Import.ExtractWorkers, 1))
	for i, d := range docs {
		g.Go(func() error {
			p, err := extractor.ExtractOrRecover(gctx, d.Data, d.Filename, d.DocumentType)
			if err != nil {
				logger.Warn("extract failed", "path", d.Path, "error", err)
			}
			items[i] = importer.BatchItem{
				ID:       importer.NewItemID(),
				Filename: d.Filename,
				Document: d.Data,
				Payload:  p,
				Selected: err == nil || *lowConf,
			}
			return nil
		})
	}
	_ = g.Wait()

	im := importer.NewImporter(blobs, logger)
	res := im.ImportBatch(ctx, store, items, func(r importer.ItemResult) {
		if r.Status == importer.StatusImporting {
			return
		}
		logger.Info("item", "filename", r.Filename, "status", r.Status, "couple_id", r.CoupleID, "created", r.Created, "error", r.Error)
	})
	logger.Info("import complete", "batch_id", res.BatchID, "succeeded", res.Succeeded, "failed", res.Failed, "skipped", res.Skipped)

	if *out != "" {
		xlsx, err := export.NewService(store.Couples(), logger).ExportCouplesXLSX(ctx, export.Window{From: *from, To: *to})
		if err != nil {
			logger.Error("failed to export couples", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, xlsx, 0o644); err != nil {
			logger.Error("failed to write output file", "error", err)
			os.Exit(1)
		}
		abs, _ := filepath.Abs(*out)
		logger.Info("workbook written", "path", abs)
	}
	if res.Failed > 0 {
		os.Exit(3)
	}
}
