package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/common"
	"github.com/joseph-ayodele/wedding-ledger/internal/llm"
	"github.com/joseph-ayodele/wedding-ledger/internal/textextract"
)

type FailureKind string

const (
	EmptyDocument           FailureKind = "empty_document"
	OracleMalformedResponse FailureKind = "oracle_malformed_response"
	OracleUnavailable       FailureKind = "oracle_unavailable"
	UnsupportedDocument     FailureKind = "unsupported_document"
)

// Failure is the typed error of Extract.
type Failure struct {
	Kind     FailureKind
	Filename string
	Err      error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("extract %s: %s", f.Filename, f.Kind)
	}
	return fmt.Sprintf("extract %s: %s: %v", f.Filename, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// TextExtractor is satisfied by *textextract.Extractor.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, filename string) (textextract.Result, error)
}

type Service struct {
	text   TextExtractor
	oracle llm.Oracle
	logger *slog.Logger
}

func NewService(text TextExtractor, oracle llm.Oracle, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{text: text, oracle: oracle, logger: logger}
}

// Extract runs text extraction, the oracle, repair, schema validation and
// scoring. Failures are returned as *Failure.
func (s *Service) Extract(ctx context.Context, doc []byte, filename string, docType constants.DocumentType) (*Payload, error) {
	logger := common.LoggerFromContext(ctx, s.logger).With("filename", filename, "document_type", docType)
	start := time.Now()

	canonical, ok := constants.ParseDocumentType(string(docType))
	if !ok {
		return nil, &Failure{Kind: UnsupportedDocument, Filename: filename, Err: fmt.Errorf("unknown document type %q", docType)}
	}
	docType = canonical
	if len(doc) == 0 {
		return nil, &Failure{Kind: EmptyDocument, Filename: filename, Err: errors.New("zero bytes")}
	}

	res, err := s.text.Extract(ctx, doc, filename)
	if err != nil {
		kind := EmptyDocument
		if errors.Is(err, textextract.ErrUnsupportedFormat) {
			kind = UnsupportedDocument
		}
		logger.Warn("extract.text_failed", "kind", kind, "error", err)
		return nil, &Failure{Kind: kind, Filename: filename, Err: err}
	}

	req := llm.NewRequest(docType, res.Text(), filename)
	raw, err := s.oracle.Complete(ctx, req)
	if err != nil {
		kind := OracleUnavailable
		if errors.Is(err, llm.ErrMalformedResponse) {
			kind = OracleMalformedResponse
		}
		logger.Error("extract.oracle_failed", "kind", kind, "oracle", s.oracle.Name(), "error", err)
		return nil, &Failure{Kind: kind, Filename: filename, Err: err}
	}

	repaired, err := llm.RepairJSON(raw)
	if err != nil {
		logger.Error("extract.malformed_json", "raw_bytes", len(raw), "error", err)
		return nil, &Failure{Kind: OracleMalformedResponse, Filename: filename, Err: err}
	}
	fields, err := Decode(repaired)
	if err != nil {
		return nil, &Failure{Kind: OracleMalformedResponse, Filename: filename, Err: err}
	}

	p := &Payload{DocumentType: docType, Filename: filename, Raw: repaired}
	p.Warnings = append(p.Warnings, res.Warnings...)
	violations, err := llm.SchemaViolations(req.Schema, repaired)
	if err != nil {
		logger.Warn("extract.schema_check_failed", "error", err)
	}
	for _, v := range violations {
		p.Warnings = append(p.Warnings, "schema "+v)
	}
	finish(p, fields)

	logger.Info("extract.ok",
		"pages", len(res.Pages),
		"confidence", p.Confidence,
		"score", p.Score,
		"load_bearing", p.LoadBearing,
		"warnings", len(p.Warnings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return p, nil
}

// ExtractOrRecover never fails: an extraction failure becomes a
// maximally-empty low-confidence payload carrying the failure as a warning.
// The failure itself is still returned for logging.
func (s *Service) ExtractOrRecover(ctx context.Context, doc []byte, filename string, docType constants.DocumentType) (*Payload, error) {
	p, err := s.Extract(ctx, doc, filename, docType)
	if err == nil {
		return p, nil
	}
	return Recover(docType, filename, err), err
}

// Recover builds the substitute payload for a failed extraction.
func Recover(docType constants.DocumentType, filename string, cause error) *Payload {
	if canonical, ok := constants.ParseDocumentType(string(docType)); ok {
		docType = canonical
	}
	p := &Payload{DocumentType: docType, Filename: filename}
	p.Warnings = append(p.Warnings, "extraction failed: "+cause.Error())
	finish(p, Empty())
	p.Confidence = ConfidenceLow
	return p
}

// finish scores the fields and fills the typed section.
func finish(p *Payload, f Fields) {
	selectors := LoadBearing(p.DocumentType)
	score, missing := Score(f, selectors)
	buildTyped(p, f)
	p.Score = score
	p.LoadBearing = len(selectors)
	p.Confidence = Bucket(score, len(selectors))
	p.Warnings = append(p.Warnings, missing...)
	p.Warnings = append(p.Warnings, f.Warnings()...)
}
