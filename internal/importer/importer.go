// Package importer writes reviewed extraction payloads into the ledger.
//
// A batch runs its selected items one after another so that matching for
// item N sees the couples created by items before it. One item's failure
// never stops the batch: errors are attached to the item and counted in the
// summary.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/common"
	"github.com/joseph-ayodele/wedding-ledger/internal/entity"
	"github.com/joseph-ayodele/wedding-ledger/internal/extraction"
	"github.com/joseph-ayodele/wedding-ledger/internal/matching"
	"github.com/joseph-ayodele/wedding-ledger/internal/merge"
	"github.com/joseph-ayodele/wedding-ledger/internal/repository"
)

// BlobStore keeps source documents under {coupleID}/{filename}.
type BlobStore interface {
	Put(ctx context.Context, coupleID uuid.UUID, filename string, data []byte, contentType string) (string, error)
}

type ItemStatus string

const (
	StatusImporting ItemStatus = "importing"
	StatusDone      ItemStatus = "done"
	StatusError     ItemStatus = "error"
	StatusSkipped   ItemStatus = "skipped"
)

type BatchItem struct {
	ID       ItemID              `json:"id"`
	Filename string              `json:"filename"`
	Document []byte              `json:"document,omitempty"`
	Payload  *extraction.Payload `json:"payload"`
	Selected bool                `json:"selected"`
}

type ItemResult struct {
	ID        ItemID           `json:"id"`
	Filename  string           `json:"filename"`
	Status    ItemStatus       `json:"status"`
	CoupleID  uuid.UUID        `json:"couple_id,omitempty"`
	Created   bool             `json:"created,omitempty"`
	MatchTier entity.MatchTier `json:"match_tier,omitempty"`
	Partial   bool             `json:"partial,omitempty"`
	Error     string           `json:"error,omitempty"`
	BlobPath  string           `json:"blob_path,omitempty"`
	BlobError string           `json:"blob_error,omitempty"`
}

type BatchResult struct {
	BatchID   string       `json:"batch_id"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Skipped   int          `json:"skipped"`
	PerItem   []ItemResult `json:"per_item"`
}

// Progress receives a StatusImporting result before an item starts and its
// final result after it ends.
type Progress func(ItemResult)

type Importer struct {
	// mu serialises batches so matching always sees every earlier write,
	// including those of a batch started by another request.
	mu     sync.Mutex
	blobs  BlobStore
	logger *slog.Logger
}

// NewImporter builds an importer. blobs may be nil, in which case source
// documents are not uploaded.
func NewImporter(blobs BlobStore, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{blobs: blobs, logger: logger}
}

// ImportBatch imports the selected items through store. It never returns an
// error; every failure is reported on its item.
func (im *Importer) ImportBatch(ctx context.Context, store repository.Store, items []BatchItem, progress Progress) BatchResult {
	im.mu.Lock()
	defer im.mu.Unlock()

	batchID := uuid.NewString()
	ctx = common.WithBatchID(ctx, batchID)
	// a started batch runs to completion even if the caller goes away
	ctx = context.WithoutCancel(ctx)
	logger := common.LoggerFromContext(ctx, im.logger)
	if progress == nil {
		progress = func(ItemResult) {}
	}

	start := time.Now()
	res := BatchResult{BatchID: batchID, PerItem: make([]ItemResult, 0, len(items))}
	logger.Info("import.batch.start", "items", len(items))

	matcher := matching.NewMatcher(store.Couples(), im.logger)
	for _, it := range items {
		if !it.Selected {
			r := ItemResult{ID: it.ID, Filename: it.Filename, Status: StatusSkipped}
			res.Skipped++
			res.PerItem = append(res.PerItem, r)
			progress(r)
			continue
		}
		progress(ItemResult{ID: it.ID, Filename: it.Filename, Status: StatusImporting})
		r := im.importOne(ctx, store, matcher, it)
		if r.Status == StatusDone {
			res.Succeeded++
		} else {
			res.Failed++
		}
		res.PerItem = append(res.PerItem, r)
		progress(r)
	}

	logger.Info("import.batch.done",
		"succeeded", res.Succeeded,
		"failed", res.Failed,
		"skipped", res.Skipped,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res
}

// ImportQueue claims the Ready items of q and moves each through Importing
// to Done or Failed.
func (im *Importer) ImportQueue(ctx context.Context, store repository.Store, q *Queue) BatchResult {
	return im.ImportBatch(ctx, store, q.Claim(), func(r ItemResult) {
		var st State
		switch r.Status {
		case StatusImporting:
			st = Importing{}
		case StatusDone:
			st = Done{CoupleID: r.CoupleID, Created: r.Created}
		case StatusError:
			st = Failed{Message: r.Error, Partial: r.Partial, CoupleID: r.CoupleID}
		default:
			return
		}
		if err := q.Set(r.ID, st); err != nil {
			im.logger.Warn("import.queue.set_failed", "item_id", r.ID, "error", err)
		}
	})
}

func (im *Importer) importOne(ctx context.Context, store repository.Store, matcher *matching.Matcher, it BatchItem) ItemResult {
	r := ItemResult{ID: it.ID, Filename: it.Filename}
	logger := common.LoggerFromContext(ctx, im.logger).With("item_id", it.ID, "filename", it.Filename)
	fail := func(err error) ItemResult {
		r.Status = StatusError
		r.Error = err.Error()
		logger.Error("import.item.failed", "partial", r.Partial, "couple_id", r.CoupleID, "error", err)
		return r
	}

	p := it.Payload
	if p == nil {
		return fail(errors.New("item has no extracted payload"))
	}
	docType, ok := constants.ParseDocumentType(string(p.DocumentType))
	if !ok {
		return fail(fmt.Errorf("unknown document type %q", p.DocumentType))
	}
	if docType != p.DocumentType {
		canonical := *p
		canonical.DocumentType = docType
		p = &canonical
	}

	candidate, err := matcher.Match(ctx, matching.IdentityOf(p))
	if err != nil {
		return fail(err)
	}
	var existing *entity.Couple
	if candidate != nil {
		existing = &candidate.Couple
		r.MatchTier = candidate.Tier
	}

	merged := merge.Apply(existing, p)
	couple := merged.Couple
	if merged.Created {
		err = store.Couples().Create(ctx, &couple)
	} else {
		err = store.Couples().Update(ctx, &couple)
	}
	if err != nil {
		return fail(common.WrapError(err, "write couple"))
	}
	r.CoupleID = couple.ID
	r.Created = merged.Created

	if err := writeRelated(ctx, store, couple.ID, it.Filename, p); err != nil {
		r.Partial = true
		return fail(err)
	}

	if im.blobs != nil && len(it.Document) > 0 {
		path, err := im.blobs.Put(ctx, couple.ID, it.Filename, it.Document, constants.ContentTypeFor(filepath.Ext(it.Filename)))
		if err != nil {
			r.BlobError = err.Error()
			logger.Warn("import.blob.failed", "couple_id", couple.ID, "error", err)
		} else {
			r.BlobPath = path
		}
	}

	r.Status = StatusDone
	logger.Info("import.item.ok",
		"couple_id", couple.ID,
		"created", merged.Created,
		"tier", r.MatchTier,
		"changed", merged.Changed,
	)
	return r
}
