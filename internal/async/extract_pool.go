package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/common"
	"github.com/joseph-ayodele/wedding-ledger/internal/extraction"
	"github.com/joseph-ayodele/wedding-ledger/internal/importer"
)

var ErrShuttingDown = errors.New("extraction pool is shutting down")

// Extractor is satisfied by *extraction.Service.
type Extractor interface {
	ExtractOrRecover(ctx context.Context, doc []byte, filename string, docType constants.DocumentType) (*extraction.Payload, error)
}

// Sink receives the state of each job; *importer.Queue satisfies it.
type Sink interface {
	Set(id importer.ItemID, st importer.State) error
}

// ExtractPool runs extractions in parallel. Extraction shares no state
// between documents, so unlike imports it needs no ordering.
type ExtractPool struct {
	extractor Extractor
	sink      Sink
	logger    *slog.Logger
	workers   int
	timeout   time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

var _ Queue = (*ExtractPool)(nil)

type Option func(*ExtractPool)

func WithWorkers(n int) Option {
	return func(q *ExtractPool) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ExtractPool) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithExtractTimeout(d time.Duration) Option {
	return func(q *ExtractPool) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewExtractPool(extractor Extractor, sink Sink, logger *slog.Logger, opts ...Option) *ExtractPool {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ExtractPool{
		extractor: extractor,
		sink:      sink,
		logger:    logger,
		workers:   4,
		timeout:   3 * time.Minute,
		ch:        make(chan Job, 128),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ExtractPool) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("extract.worker.started", "worker_id", workerID)
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Debug("extract.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ExtractPool) run(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	if job.RequestID != "" {
		ctx = common.WithRequestID(ctx, job.RequestID)
	}

	// extraction failures still yield a low-confidence payload for review
	payload, err := q.extractor.ExtractOrRecover(ctx, job.Document, job.Filename, job.DocumentType)
	if err != nil {
		q.logger.Warn("extract.job.recovered", "worker_id", workerID, "item_id", job.ItemID, "filename", job.Filename, "error", err)
	} else {
		q.logger.Info("extract.job.ok", "worker_id", workerID, "item_id", job.ItemID, "filename", job.Filename,
			"confidence", payload.Confidence, "waited_ms", time.Since(job.SubmittedAt).Milliseconds())
	}
	if err := q.sink.Set(job.ItemID, importer.Ready{Payload: payload}); err != nil {
		q.logger.Error("extract.job.sink_failed", "item_id", job.ItemID, "error", err)
	}
}

// Enqueue blocks while the buffer is full, until ctx is done.
func (q *ExtractPool) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: pool is shutting down", "item_id", job.ItemID)
		return ErrShuttingDown
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Debug("extract.job.queued", "item_id", job.ItemID, "filename", job.Filename)
		return nil
	default:
	}
	q.logger.Warn("extract queue full, applying backpressure", "item_id", job.ItemID)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish.
func (q *ExtractPool) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("extract pool drained, shutdown complete")
	}
}

// Submit adds a document to queue and schedules its extraction.
func Submit(ctx context.Context, pool Queue, queue *importer.Queue, filename string, docType constants.DocumentType, doc []byte) (importer.ItemID, error) {
	id := queue.Add(filename, docType, doc)
	err := pool.Enqueue(ctx, Job{
		ItemID:       id,
		Filename:     filename,
		DocumentType: docType,
		Document:     doc,
		RequestID:    common.RequestIDFromContext(ctx),
	})
	if err != nil {
		_ = queue.Set(id, importer.Failed{Message: err.Error()})
		return id, err
	}
	return id, nil
}
