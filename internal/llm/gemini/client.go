// Package gemini implements llm.Oracle on Google's Gemini API.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/joseph-ayodele/wedding-ledger/internal/llm"
)

type Config struct {
	APIKey          string
	Model           string // default gemini-2.5-flash
	Temperature     float32
	MaxOutputTokens int32
}

type Client struct {
	cfg    Config
	client *genai.Client
	logger *slog.Logger
}

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 8192
	}
	gc, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{cfg: cfg, client: gc, logger: logger}, nil
}

func (c *Client) Name() string { return "gemini:" + c.cfg.Model }

func (c *Client) Close() error { return c.client.Close() }

// Complete asks Gemini for a JSON response. The schema travels in the prompt
// rather than as ResponseSchema because genai.Schema cannot express the
// number-or-string money fields.
func (c *Client) Complete(ctx context.Context, req llm.Request) ([]byte, error) {
	start := time.Now()
	model := c.client.GenerativeModel(c.cfg.Model)
	model.SetTemperature(c.cfg.Temperature)
	model.SetMaxOutputTokens(c.cfg.MaxOutputTokens)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = genai.NewUserContent(genai.Text(req.SystemPrompt))

	c.logger.Info("llm.extract.start",
		"provider", "gemini",
		"model", c.cfg.Model,
		"document_type", req.DocumentType,
		"prompt_len", len(req.UserPrompt),
	)

	resp, err := model.GenerateContent(ctx,
		genai.Text("JSON Schema:\n"+schemaJSON(req.Schema)),
		genai.Text(req.UserPrompt),
	)
	if err != nil {
		c.logger.Error("llm.extract.http_error", "provider", "gemini", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("%w: %v", llm.ErrUnavailable, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no content parts from gemini", llm.ErrMalformedResponse)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		c.logger.Warn("llm.extract.truncated", "provider", "gemini", "content_len", b.Len())
	}
	if b.Len() == 0 {
		return nil, fmt.Errorf("%w: empty text from gemini", llm.ErrMalformedResponse)
	}

	c.logger.Info("llm.extract.ok",
		"provider", "gemini",
		"document_type", req.DocumentType,
		"content_len", b.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return []byte(b.String()), nil
}
