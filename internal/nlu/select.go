package nlu

import (
	"log/slog"

	"github.com/dukerupert/autoagenda/internal/config"
)

// New returns the extractor cfg selects. The OpenAI extractor always falls
// back to Passthrough when a request fails.
func New(cfg *config.Config, logger *slog.Logger) Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.UseLLM() {
		logger.Info("nlu disabled, storing text verbatim")
		return Passthrough{}
	}
	logger.Info("nlu enabled", "model", cfg.OpenAI.Model)
	primary := NewOpenAIExtractor(OpenAIConfig{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
	}, logger)
	return WithFallback(primary, Passthrough{}, logger)
}
