// Package providers wires the concrete inference providers into the
// inference registry.
package providers

import (
	"sync"

	"go.uber.org/zap"

	"spendlens/internal/config"
	"spendlens/internal/inference"
	"spendlens/internal/inference/claude"
	"spendlens/internal/inference/gemini"
	"spendlens/internal/port"
)

var registerOnce sync.Once

// RegisterAll registers every built-in provider factory.
func RegisterAll() {
	registerOnce.Do(func() {
		inference.RegisterProvider(gemini.ProviderName, func(cfg *config.ProviderConfig, log *zap.Logger) (port.InferenceClient, error) {
			return gemini.NewClient(cfg, log), nil
		})
		inference.RegisterProvider(claude.ProviderName, func(cfg *config.ProviderConfig, log *zap.Logger) (port.InferenceClient, error) {
			return claude.NewClient(cfg, log), nil
		})
	})
}

// Build creates the client for cfg. A configured secondary provider is
// chained behind the primary with a FallbackClient.
func Build(cfg *config.InferenceConfig, log *zap.Logger) (port.InferenceClient, error) {
	RegisterAll()
	if log == nil {
		log = zap.NewNop()
	}

	primary, err := inference.NewClient(cfg.PrimaryConfig(), log)
	if err != nil {
		return nil, err
	}
	secondaryCfg := cfg.SecondaryConfig()
	if secondaryCfg == nil {
		return primary, nil
	}

	secondary, err := inference.NewClient(secondaryCfg, log)
	if err != nil {
		return nil, err
	}
	log.Info("providers.Build: fallback enabled",
		zap.String("primary", cfg.Provider), zap.String("secondary", secondaryCfg.Provider))
	return inference.NewFallbackClient(
		[]port.InferenceClient{primary, secondary},
		[]string{cfg.Provider, secondaryCfg.Provider},
		log,
	), nil
}
