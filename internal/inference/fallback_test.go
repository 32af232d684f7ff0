package inference_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"spendlens/internal/domain"
	"spendlens/internal/inference"
	"spendlens/internal/port"
	"spendlens/mocks"
)

var fallbackRequest = port.InferenceRequest{
	Parts:            []port.Part{{Kind: port.PartText, Text: "analyze"}},
	ResponseMIMEType: "application/json",
	ThinkingBudget:   3000,
}

func fallbackResponse(provider string) *port.InferenceResponse {
	return &port.InferenceResponse{Text: `{"summary":{}}`, Model: provider + "-model", Provider: provider}
}

func rateLimited(provider string, retryAfter time.Duration) error {
	rl := inference.NewRateLimitError(provider, errors.New("429"), retryAfter)
	return domain.NewInferenceError(provider, domain.InferenceRateLimited, rl)
}

func TestFallbackClient_FirstSucceeds(t *testing.T) {
	c1 := new(mocks.MockInferenceClient)
	c2 := new(mocks.MockInferenceClient)
	c1.On("Generate", mock.Anything, fallbackRequest).Return(fallbackResponse("gemini"), nil)

	fc := inference.NewFallbackClient([]port.InferenceClient{c1, c2}, []string{"gemini", "claude"}, nil)

	resp, err := fc.Generate(context.Background(), fallbackRequest)

	require.NoError(t, err)
	assert.Equal(t, "gemini", resp.Provider)
	c2.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestFallbackClient_FirstFails_SecondSucceeds(t *testing.T) {
	c1 := new(mocks.MockInferenceClient)
	c2 := new(mocks.MockInferenceClient)
	c1.On("Generate", mock.Anything, fallbackRequest).
		Return(nil, domain.NewInferenceError("gemini", domain.InferenceRejected, errors.New("500")))
	c2.On("Generate", mock.Anything, fallbackRequest).Return(fallbackResponse("claude"), nil)

	fc := inference.NewFallbackClient([]port.InferenceClient{c1, c2}, []string{"gemini", "claude"}, nil)

	resp, err := fc.Generate(context.Background(), fallbackRequest)

	require.NoError(t, err)
	assert.Equal(t, "claude", resp.Provider)
}

func TestFallbackClient_RateLimitedProviderSkippedOnNextCall(t *testing.T) {
	c1 := new(mocks.MockInferenceClient)
	c2 := new(mocks.MockInferenceClient)
	c1.On("Generate", mock.Anything, fallbackRequest).Return(nil, rateLimited("gemini", time.Minute)).Once()
	c2.On("Generate", mock.Anything, fallbackRequest).Return(fallbackResponse("claude"), nil).Twice()

	fc := inference.NewFallbackClient([]port.InferenceClient{c1, c2}, []string{"gemini", "claude"}, nil)

	_, err := fc.Generate(context.Background(), fallbackRequest)
	require.NoError(t, err)
	resp, err := fc.Generate(context.Background(), fallbackRequest)
	require.NoError(t, err)

	assert.Equal(t, "claude", resp.Provider)
	c1.AssertNumberOfCalls(t, "Generate", 1)
	c2.AssertNumberOfCalls(t, "Generate", 2)
}

func TestFallbackClient_AllRateLimited(t *testing.T) {
	c1 := new(mocks.MockInferenceClient)
	c2 := new(mocks.MockInferenceClient)
	c1.On("Generate", mock.Anything, fallbackRequest).Return(nil, rateLimited("gemini", 30*time.Second))
	c2.On("Generate", mock.Anything, fallbackRequest).Return(nil, rateLimited("claude", 90*time.Second))

	fc := inference.NewFallbackClient([]port.InferenceClient{c1, c2}, []string{"gemini", "claude"}, nil)

	_, err := fc.Generate(context.Background(), fallbackRequest)

	require.Error(t, err)
	var infErr *domain.InferenceError
	require.ErrorAs(t, err, &infErr)
	assert.Equal(t, domain.InferenceRateLimited, infErr.Kind)
	var rlErr *inference.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.LessOrEqual(t, rlErr.RetryAfter, 30*time.Second)
}

func TestFallbackClient_AllFail_ReturnsLastError(t *testing.T) {
	c1 := new(mocks.MockInferenceClient)
	c2 := new(mocks.MockInferenceClient)
	c1.On("Generate", mock.Anything, fallbackRequest).
		Return(nil, domain.NewInferenceError("gemini", domain.InferenceTransport, errors.New("dial tcp")))
	c2.On("Generate", mock.Anything, fallbackRequest).
		Return(nil, domain.NewInferenceError("claude", domain.InferenceEmptyResponse, nil))

	fc := inference.NewFallbackClient([]port.InferenceClient{c1, c2}, []string{"gemini", "claude"}, nil)

	_, err := fc.Generate(context.Background(), fallbackRequest)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInference)
	assert.Equal(t, "inference:empty_response", domain.ErrorKind(err))
}

func TestFallbackClient_StopsOnCancelledContext(t *testing.T) {
	c1 := new(mocks.MockInferenceClient)
	c2 := new(mocks.MockInferenceClient)
	ctx, cancel := context.WithCancel(context.Background())
	c1.On("Generate", mock.Anything, fallbackRequest).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, domain.NewInferenceError("gemini", domain.InferenceTransport, context.Canceled))

	fc := inference.NewFallbackClient([]port.InferenceClient{c1, c2}, []string{"gemini", "claude"}, nil)

	_, err := fc.Generate(ctx, fallbackRequest)

	require.ErrorIs(t, err, context.Canceled)
	c2.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}
