package async

import (
	"context"
	"time"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/importer"
)

// Job is one document waiting for extraction.
type Job struct {
	ItemID       importer.ItemID
	Filename     string
	DocumentType constants.DocumentType
	Document     []byte
	SubmittedAt  time.Time
	RequestID    string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
