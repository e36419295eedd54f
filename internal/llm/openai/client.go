package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/wedding-ledger/internal/llm"
)

func (c *Client) Name() string { return "openai:" + c.cfg.Model }

// Complete implements llm.Oracle using text-only chat/completions in JSON mode.
// The returned bytes are the message content, unvalidated.
func (c *Client) Complete(ctx context.Context, req llm.Request) ([]byte, error) {
	start := time.Now()
	c.logger.Info("llm.extract.start",
		"provider", "openai",
		"model", c.cfg.Model,
		"document_type", req.DocumentType,
		"prompt_len", len(req.UserPrompt),
	)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": req.SystemPrompt},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(req.Schema)},
			{"role": "user", "content": req.UserPrompt + "\n\nReturn ONLY JSON that matches the provided schema."},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("llm.extract.http_error",
			"status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.extract.decode_error", "error", err, "raw_bytes", len(raw))
		return nil, fmt.Errorf("%w: decode openai envelope: %v", llm.ErrMalformedResponse, err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.extract.no_choices", "raw_bytes", len(raw))
		return nil, fmt.Errorf("%w: no choices in openai response", llm.ErrMalformedResponse)
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	if cc.Choices[0].FinishReason == "length" {
		c.logger.Warn("llm.extract.truncated", "content_len", len(content))
	}

	c.logger.Info("llm.extract.ok",
		"provider", "openai",
		"document_type", req.DocumentType,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return []byte(content), nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
