package analysis

import (
	"context"
	"log/slog"
	"time"
)

// SelectConfig describes which analyzers are available at startup
type SelectConfig struct {
	GeminiAPIKey string
	GeminiModel  string
	Timeout      time.Duration
	Logger       *slog.Logger
}

// Select builds the analyzer used by the service. The check for an external
// analyzer happens here once, so business code only ever sees Analyzer.
// The returned close function releases the external client, if any.
func Select(ctx context.Context, cfg *SelectConfig) (Analyzer, func() error, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	heuristic := NewHeuristicAnalyzer()
	if cfg.GeminiAPIKey == "" {
		logger.Info("no external analyzer configured, using heuristic analyzer")
		return NewFallbackAnalyzer(&FallbackConfig{Fallback: heuristic, Logger: logger}),
			func() error { return nil }, nil
	}

	client, model, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("external analyzer configured", "analyzer", "gemini", "timeout", cfg.Timeout)
	return NewFallbackAnalyzer(&FallbackConfig{
		Primary:  NewGeminiAnalyzer(&GeminiConfig{Model: model}),
		Fallback: heuristic,
		Timeout:  cfg.Timeout,
		Logger:   logger,
	}), client.Close, nil
}
