// Package provider builds the configured llm.Oracle.
package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/wedding-ledger/internal/common"
	"github.com/joseph-ayodele/wedding-ledger/internal/llm"
	"github.com/joseph-ayodele/wedding-ledger/internal/llm/gemini"
	"github.com/joseph-ayodele/wedding-ledger/internal/llm/openai"
)

// New creates the oracle named by cfg.Provider, wrapped in the configured
// rate limit. The returned close func releases provider resources.
func New(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) (llm.Oracle, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		oracle llm.Oracle
		closer = func() error { return nil }
	)
	switch cfg.Provider {
	case "", "openai":
		oracle = openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
	case "gemini":
		gc, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.GeminiModel,
			Temperature: cfg.Temperature,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		oracle, closer = gc, gc.Close
	default:
		return nil, nil, fmt.Errorf("unsupported llm provider: %q (supported: openai, gemini)", cfg.Provider)
	}
	logger.Info("llm oracle initialized", "oracle", oracle.Name(), "requests_per_minute", cfg.RequestsPerMinute)
	return llm.RateLimited(oracle, cfg.RequestsPerMinute), closer, nil
}
