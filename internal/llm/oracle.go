package llm

import (
	"context"
	"errors"

	"github.com/joseph-ayodele/wedding-ledger/constants"
)

var (
	// ErrUnavailable wraps transport failures, timeouts and non-2xx answers.
	ErrUnavailable = errors.New("oracle unavailable")
	// ErrMalformedResponse means the oracle answered but no JSON object could be recovered.
	ErrMalformedResponse = errors.New("oracle returned malformed JSON")
)

// Request is one schema-shaped extraction call.
type Request struct {
	DocumentType constants.DocumentType
	SystemPrompt string
	UserPrompt   string
	Schema       map[string]any
}

// Oracle turns document text into a JSON object approximating Schema.
// Nothing about the returned bytes is trusted: callers repair, validate and
// decode them defensively.
type Oracle interface {
	Complete(ctx context.Context, req Request) ([]byte, error)
	Name() string
}

// NewRequest builds the prompts and schema for a document type.
func NewRequest(docType constants.DocumentType, text, filename string) Request {
	return Request{
		DocumentType: docType,
		SystemPrompt: BuildSystemPrompt(docType),
		UserPrompt:   BuildUserPrompt(text, filename),
		Schema:       BuildSchema(docType),
	}
}
