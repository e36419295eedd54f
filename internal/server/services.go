package server

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/async"
	"github.com/joseph-ayodele/wedding-ledger/internal/blobstore"
	"github.com/joseph-ayodele/wedding-ledger/internal/couples"
	"github.com/joseph-ayodele/wedding-ledger/internal/export"
	"github.com/joseph-ayodele/wedding-ledger/internal/extraction"
	"github.com/joseph-ayodele/wedding-ledger/internal/importer"
	"github.com/joseph-ayodele/wedding-ledger/internal/ingest"
	"github.com/joseph-ayodele/wedding-ledger/internal/repository"
)

// Extractor is satisfied by *extraction.Service.
type Extractor interface {
	Extract(ctx context.Context, doc []byte, filename string, docType constants.DocumentType) (*extraction.Payload, error)
}

// Services is everything the transports call into. Pool, Queue, Blobs and
// Health are optional.
type Services struct {
	Extraction Extractor
	Importer   *importer.Importer
	Store      repository.Store
	Couples    *couples.Service
	Export     *export.Service
	Blobs      blobstore.Store
	Queue      *importer.Queue
	Pool       async.Queue
	Health     func(ctx context.Context) error
	Logger     *slog.Logger

	// ExtractConcurrency bounds parallel oracle calls for one request.
	ExtractConcurrency int
}

func (s Services) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

type extractResult struct {
	Filename    string                 `json:"filename"`
	Payload     *extraction.Payload    `json:"payload"`
	Error       string                 `json:"error,omitempty"`
	FailureKind extraction.FailureKind `json:"failure_kind,omitempty"`
}

// extractAll runs the documents through the oracle in parallel. Results keep
// the input order; a failed document carries a recovered low-confidence
// payload plus its error.
func (s Services) extractAll(ctx context.Context, docs []ingest.Document) []extractResult {
	limit := s.ExtractConcurrency
	if limit <= 0 {
		limit = 4
	}
	out := make([]extractResult, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, d := range docs {
		g.Go(func() error {
			p, err := s.Extraction.Extract(gctx, d.Data, d.Filename, d.DocumentType)
			r := extractResult{Filename: d.Filename, Payload: p}
			if err != nil {
				r.Error = err.Error()
				var f *extraction.Failure
				if errors.As(err, &f) {
					r.FailureKind = f.Kind
				}
				r.Payload = extraction.Recover(d.DocumentType, d.Filename, err)
			}
			out[i] = r
			return nil
		})
	}
	_ = g.Wait()
	return out
}
