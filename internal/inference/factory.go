package inference

import (
	"fmt"

	"go.uber.org/zap"

	"spendlens/internal/config"
	"spendlens/internal/domain"
	"spendlens/internal/port"
)

// ProviderFactory creates an InferenceClient from a provider config.
type ProviderFactory func(cfg *config.ProviderConfig, log *zap.Logger) (port.InferenceClient, error)

// registry of provider factories, populated via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewClient creates an InferenceClient from a provider config using the
// registered factory. An unknown provider is a configuration error.
func NewClient(cfg *config.ProviderConfig, log *zap.Logger) (port.InferenceClient, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, domain.NewInferenceError(cfg.Provider, domain.InferenceConfiguration,
			fmt.Errorf("unknown inference provider: %q", cfg.Provider))
	}
	return factory(cfg, log)
}

// Registered reports whether a factory exists for name.
func Registered(name string) bool {
	_, ok := providers[name]
	return ok
}
