package server

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/common"
	"github.com/joseph-ayodele/wedding-ledger/internal/couples"
	"github.com/joseph-ayodele/wedding-ledger/internal/importer"
	"github.com/joseph-ayodele/wedding-ledger/internal/ingest"
)

// ImportService exposes extraction and batch import to scripts and the CLI.
// Paths are read on the server host.
type ImportService struct {
	svc      Services
	maxBytes int64
}

func NewImportService(svc Services, maxBytes int64) *ImportService {
	if maxBytes <= 0 {
		maxBytes = ingest.DefaultMaxBytes
	}
	return &ImportService{svc: svc, maxBytes: maxBytes}
}

type extractRequest struct {
	Path         string `json:"path"`
	DocumentType string `json:"document_type"`
}

func (s *ImportService) Extract(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if s.svc.Extraction == nil {
		return nil, status.Error(codes.Unavailable, "extraction is not configured")
	}
	var req extractRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, common.InvalidArgumentErrorf("decode request: %v", err)
	}
	doc, err := s.load(req.Path, req.DocumentType)
	if err != nil {
		return nil, err
	}
	res := s.svc.extractAll(ctx, []ingest.Document{doc})
	return toStructOrInternal(res[0])
}

type batchRequest struct {
	Items []struct {
		Path         string `json:"path"`
		DocumentType string `json:"document_type"`
		Selected     *bool  `json:"selected"`
	} `json:"items"`
	// ImportLowConfidence also commits items whose extraction failed.
	ImportLowConfidence bool `json:"import_low_confidence"`
}

type batchEvent struct {
	Type    string                `json:"type"`
	Item    *importer.ItemResult  `json:"item,omitempty"`
	Summary *importer.BatchResult `json:"summary,omitempty"`
}

// ImportBatch extracts every path in parallel, then imports the results one
// at a time, streaming an event per item transition and a final summary.
func (s *ImportService) ImportBatch(in *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()
	logger := common.LoggerFromContext(ctx, s.svc.logger())
	if s.svc.Extraction == nil {
		return status.Error(codes.Unavailable, "extraction is not configured")
	}
	var req batchRequest
	if err := fromStruct(in, &req); err != nil {
		return common.InvalidArgumentErrorf("decode request: %v", err)
	}
	if len(req.Items) == 0 {
		return status.Error(codes.InvalidArgument, "items must not be empty")
	}

	var sendErr error
	send := func(ev batchEvent) {
		if sendErr != nil {
			return
		}
		msg, err := toStruct(ev)
		if err == nil {
			err = stream.Send(msg)
		}
		if err != nil {
			sendErr = err
			logger.Warn("grpc.import_batch.send_failed", "error", err)
		}
	}

	var (
		docs     []ingest.Document
		selected []bool
		rejected []importer.ItemResult
	)
	for _, it := range req.Items {
		doc, err := s.load(it.Path, it.DocumentType)
		if err != nil {
			r := importer.ItemResult{ID: importer.NewItemID(), Filename: it.Path, Status: importer.StatusError, Error: status.Convert(err).Message()}
			rejected = append(rejected, r)
			send(batchEvent{Type: "item", Item: &r})
			continue
		}
		docs = append(docs, doc)
		selected = append(selected, it.Selected == nil || *it.Selected)
	}

	extracted := s.svc.extractAll(ctx, docs)
	items := make([]importer.BatchItem, 0, len(docs))
	for i, r := range extracted {
		id := importer.NewItemID()
		if r.Error != "" && !req.ImportLowConfidence {
			res := importer.ItemResult{ID: id, Filename: r.Filename, Status: importer.StatusError, Error: r.Error}
			rejected = append(rejected, res)
			send(batchEvent{Type: "item", Item: &res})
			continue
		}
		items = append(items, importer.BatchItem{
			ID:       id,
			Filename: r.Filename,
			Document: docs[i].Data,
			Payload:  r.Payload,
			Selected: selected[i],
		})
	}

	res := s.svc.Importer.ImportBatch(ctx, s.svc.Store, items, func(r importer.ItemResult) {
		send(batchEvent{Type: "item", Item: &r})
	})
	res.Failed += len(rejected)
	res.PerItem = append(rejected, res.PerItem...)
	send(batchEvent{Type: "summary", Summary: &res})
	return sendErr
}

type listCouplesRequest struct {
	Status      string `json:"status"`
	WeddingDate string `json:"wedding_date"`
}

func (s *ImportService) ListCouples(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req listCouplesRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, common.InvalidArgumentErrorf("decode request: %v", err)
	}
	list, err := s.svc.Couples.ListCouples(ctx, couples.ListCouplesRequest{Status: req.Status, WeddingDate: req.WeddingDate})
	if err != nil {
		return nil, err
	}
	return toStructOrInternal(map[string]any{"couples": list})
}

func (s *ImportService) load(path, docType string) (ingest.Document, error) {
	if path == "" {
		return ingest.Document{}, status.Error(codes.InvalidArgument, "path is required")
	}
	dt, ok := constants.ParseDocumentType(docType)
	if !ok {
		return ingest.Document{}, common.InvalidArgumentErrorf("unknown document_type %q", docType)
	}
	doc, err := ingest.LoadFile(path, dt, s.maxBytes)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ingest.Document{}, status.Errorf(codes.NotFound, "%s: no such file", path)
	case err != nil:
		return ingest.Document{}, status.Error(codes.InvalidArgument, err.Error())
	}
	return doc, nil
}

func toStructOrInternal(v any) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}

func requestIDFromMetadata(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get("x-request-id"); len(v) > 0 && v[0] != "" {
			return v[0]
		}
	}
	return uuid.NewString()
}

// UnaryLogging is the gRPC counterpart of RequestID and RequestLogger.
func UnaryLogging(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		requestID := requestIDFromMetadata(ctx)
		ctx = common.WithRequestID(ctx, requestID)
		resp, err := handler(ctx, req)
		logRPC(logger, info.FullMethod, requestID, start, err)
		return resp, err
	}
}

// StreamLogging is UnaryLogging for streaming methods.
func StreamLogging(logger *slog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		requestID := requestIDFromMetadata(ss.Context())
		err := handler(srv, &contextStream{ServerStream: ss, ctx: common.WithRequestID(ss.Context(), requestID)})
		logRPC(logger, info.FullMethod, requestID, start, err)
		return err
	}
}

type contextStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *contextStream) Context() context.Context { return s.ctx }

func logRPC(logger *slog.Logger, method, requestID string, start time.Time, err error) {
	code := status.Code(err)
	attrs := []any{"method", method, "code", code.String(), "latency_ms", time.Since(start).Milliseconds(), "request_id", requestID}
	switch {
	case err == nil:
		logger.Info("grpc.request", attrs...)
	case httpStatus(code) >= 500:
		logger.Error("grpc.request", append(attrs, "error", err)...)
	default:
		logger.Warn("grpc.request", append(attrs, "error", err)...)
	}
}
