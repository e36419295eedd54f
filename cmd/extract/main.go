package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/common"
	"github.com/joseph-ayodele/wedding-ledger/internal/extraction"
	"github.com/joseph-ayodele/wedding-ledger/internal/ingest"
	"github.com/joseph-ayodele/wedding-ledger/internal/llm/provider"
	"github.com/joseph-ayodele/wedding-ledger/internal/server"
	"github.com/joseph-ayodele/wedding-ledger/internal/textextract"
)

// extract prints the review payload for one document, either locally or
// through a running ledgerd.
func main() {
	var (
		docType = flag.String("type", "contract", "contract, extras-quote or lead-quote")
		addr    = flag.String("addr", "", "ledgerd gRPC address; empty runs extraction in-process")
		timeout = flag.Duration("timeout", 2*time.Minute, "overall timeout")
	)
	flag.Parse()

	cfg := common.LoadConfig()
	logger := common.NewLogger(common.LogConfig{Level: cfg.Log.Level, Format: "json"})

	if flag.NArg() != 1 {
		logger.Error("usage: extract [--type contract] [--addr host:port] <file>")
		os.Exit(2)
	}
	path := flag.Arg(0)
	dt, ok := constants.ParseDocumentType(*docType)
	if !ok {
		logger.Error("unknown document type", "type", *docType)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var out any
	if *addr != "" {
		res, err := remote(ctx, *addr, path, dt)
		if err != nil {
			logger.Error("remote extract", "addr", *addr, "error", err)
			os.Exit(1)
		}
		out = res.AsMap()
	} else {
		p, err := local(ctx, cfg, path, dt, logger)
		if err != nil {
			logger.Warn("extraction failed, showing recovered payload", "error", err)
		}
		out = p
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("encode", "error", err)
		os.Exit(1)
	}
}

func local(ctx context.Context, cfg *common.Config, path string, dt constants.DocumentType, logger *slog.Logger) (*extraction.Payload, error) {
	doc, err := ingest.LoadFile(path, dt, cfg.Import.MaxUploadBytes)
	if err != nil {
		return nil, err
	}
	oracle, closeOracle, err := provider.New(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = closeOracle() }()

	text := textextract.NewExtractor(textextract.Config{
		Pdftotext: cfg.TextExtract.Pdftotext,
		MaxPages:  cfg.TextExtract.MaxPages,
	}, logger)
	start := time.Now()
	p, err := extraction.NewService(text, oracle, logger).ExtractOrRecover(ctx, doc.Data, doc.Filename, doc.DocumentType)
	logger.Info("extract.done", "filename", doc.Filename, "elapsed_ms", time.Since(start).Milliseconds())
	return p, err
}

func remote(ctx context.Context, addr, path string, dt constants.DocumentType) (*structpb.Struct, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()
	// the server resolves the path on its own host
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	req, err := structpb.NewStruct(map[string]any{"path": path, "document_type": string(dt)})
	if err != nil {
		return nil, err
	}
	return server.NewImportServiceClient(conn).Extract(ctx, req)
}
