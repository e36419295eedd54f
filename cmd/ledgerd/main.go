package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/async"
	"github.com/joseph-ayodele/wedding-ledger/internal/blobstore"
	"github.com/joseph-ayodele/wedding-ledger/internal/common"
	"github.com/joseph-ayodele/wedding-ledger/internal/couples"
	"github.com/joseph-ayodele/wedding-ledger/internal/export"
	"github.com/joseph-ayodele/wedding-ledger/internal/extraction"
	"github.com/joseph-ayodele/wedding-ledger/internal/importer"
	"github.com/joseph-ayodele/wedding-ledger/internal/ingest"
	"github.com/joseph-ayodele/wedding-ledger/internal/llm/provider"
	"github.com/joseph-ayodele/wedding-ledger/internal/repository"
	"github.com/joseph-ayodele/wedding-ledger/internal/server"
	"github.com/joseph-ayodele/wedding-ledger/internal/textextract"
)

func main() {
	inmem := flag.Bool("inmem", false, "use in-memory SQLite database")
	flag.Parse()

	cfg := common.LoadConfig()
	if *inmem {
		cfg.Database.InMemory = true
	}
	logger := common.NewLogger(cfg.Log)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.InitDatabase(ctx, cfg.Database, cfg.Database.InMemory, logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.HealthCheck(ctx, 3*time.Second); err != nil {
		logger.Error("DB health failed", "error", err)
		os.Exit(1)
	}
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
	defer func() {
		if err := closeOracle(); err != nil {
			logger.Warn("closing oracle", "error", err)
		}
	}()
	logger.Info("oracle ready", "provider", oracle.Name())

	text := textextract.NewExtractor(textextract.Config{
		Pdftotext: cfg.TextExtract.Pdftotext,
		MaxPages:  cfg.TextExtract.MaxPages,
	}, logger)
	extractor := extraction.NewService(text, oracle, logger)

	queue := importer.NewQueue()
	unsubscribe := queue.Subscribe(func(u importer.Update) {
		logger.Debug("queue.item", "item_id", u.ID, "filename", u.Filename, "state", u.State.Name())
	})
	defer unsubscribe()

	pool := async.NewExtractPool(extractor, queue, logger,
		async.WithWorkers(cfg.Import.ExtractWorkers),
		async.WithQueueSize(cfg.Import.QueueSize),
		async.WithExtractTimeout(cfg.Import.ExtractTimeout),
	)

	svc := server.Services{
		Extraction:         extractor,
		Importer:           importer.NewImporter(blobs, logger),
		Store:              store,
		Couples:            couples.NewService(store, logger),
		Export:             export.NewService(store.Couples(), logger),
		Blobs:              blobs,
		Queue:              queue,
		Pool:               pool,
		Health:             func(ctx context.Context) error { return db.HealthCheck(ctx, time.Second) },
		Logger:             logger,
		ExtractConcurrency: cfg.Import.ExtractWorkers,
	}

	// gRPC server
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(server.UnaryLogging(logger)),
		grpc.StreamInterceptor(server.StreamLogging(logger)),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)
	server.RegisterImportServiceServer(grpcServer, server.NewImportService(svc, cfg.Import.MaxUploadBytes))

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("listen", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	go func() {
		logger.Info("gRPC serving", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc serve", "error", err)
			stop()
		}
	}()

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           server.NewRouter(svc, cfg.Import.MaxUploadBytes),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP serving", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	if cfg.Import.WatchDir != "" {
		if err := watchInbox(ctx, cfg.Import, pool, queue, logger); err != nil {
			logger.Error("failed to start inbox watcher", "dir", cfg.Import.WatchDir, "error", err)
			os.Exit(1)
		}
	}

	<-ctx.Done()
	logger.Info("shutting down...")
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	grpcServer.GracefulStop()
	pool.Shutdown(shutdownCtx)
	logger.Info("stopped")
}

// watchInbox feeds documents dropped under cfg.WatchDir into the review
// queue. The first directory level names the document type; identical
// content is only queued once per process.
func watchInbox(ctx context.Context, cfg common.ImportConfig, pool async.Queue, queue *importer.Queue, logger *slog.Logger) error {
	paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{cfg.WatchDir},
		InitialScan: true,
		Debounce:    cfg.WatchDebounce,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	logger.Info("watching inbox", "dir", cfg.WatchDir)

	go func() {
		seen := make(map[string]struct{})
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				logger.Warn("inbox.watch.error", "error", err)
			case path, ok := <-paths:
				if !ok {
					return
				}
				docType := ingest.DocumentTypeForPath(cfg.WatchDir, path, constants.DocContract)
				doc, err := ingest.LoadFile(path, docType, cfg.MaxUploadBytes)
				if err != nil {
					logger.Warn("inbox.load.failed", "path", path, "error", err)
					continue
				}
				if _, dup := seen[doc.HashHex]; dup {
					logger.Info("inbox.duplicate", "path", path, "sha256", doc.HashHex)
					continue
				}
				seen[doc.HashHex] = struct{}{}
				id, err := async.Submit(ctx, pool, queue, doc.Filename, doc.DocumentType, doc.Data)
				if err != nil {
					logger.Warn("inbox.submit.failed", "path", path, "item_id", id, "error", err)
					continue
				}
				logger.Info("inbox.queued", "path", path, "item_id", id, "document_type", doc.DocumentType)
			}
		}
	}()
	return nil
}
