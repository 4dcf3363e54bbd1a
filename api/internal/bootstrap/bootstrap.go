package bootstrap

import (
	"go.uber.org/zap"

	"analyze-skin/api/internal/config"
	"analyze-skin/api/internal/skin"
	"analyze-skin/api/internal/skin/gemini"
	"analyze-skin/api/internal/skin/geminisdk"
)

// Engines builds every available engine from cfg, defaulting to cfg.Engine.
func Engines(cfg *config.Config, logger *zap.Logger) *skin.Engines {
	return skin.NewEngines(cfg.Engine,
		gemini.New(gemini.Config{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
			Timeout: cfg.GeminiTimeout,
		}, logger),
		geminisdk.New(geminisdk.Config{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
			Timeout: cfg.GeminiTimeout,
		}, logger),
	)
}

// Service wires the configured engine into a skin.Service.
func Service(cfg *config.Config, logger *zap.Logger) (*skin.Service, error) {
	eng, err := Engines(cfg, logger).GetEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}
	return skin.NewService(eng, logger), nil
}
