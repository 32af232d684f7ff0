package inference_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"spendlens/internal/config"
	"spendlens/internal/domain"
	"spendlens/internal/inference"
	"spendlens/internal/port"
	"spendlens/mocks"
)

func TestNewClient_UnknownProvider(t *testing.T) {
	_, err := inference.NewClient(&config.ProviderConfig{Provider: "nope"}, nil)

	require.Error(t, err)
	var infErr *domain.InferenceError
	require.ErrorAs(t, err, &infErr)
	assert.Equal(t, domain.InferenceConfiguration, infErr.Kind)
}

func TestNewClient_RegisteredProvider(t *testing.T) {
	stub := new(mocks.MockInferenceClient)
	inference.RegisterProvider("stub", func(cfg *config.ProviderConfig, _ *zap.Logger) (port.InferenceClient, error) {
		return stub, nil
	})

	c, err := inference.NewClient(&config.ProviderConfig{Provider: "stub"}, zap.NewNop())

	require.NoError(t, err)
	assert.Same(t, stub, c)
	assert.True(t, inference.Registered("stub"))
}
