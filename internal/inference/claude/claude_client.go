package claude

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"spendlens/internal/config"
	"spendlens/internal/domain"
	"spendlens/internal/inference"
	"spendlens/internal/port"
)

// ProviderName is the registry key of this provider.
const ProviderName = "claude"

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-20250514"

// outputTokens is the room left for the answer on top of the thinking budget.
const outputTokens = 8192

// Thinking budget bounds. The upper bound keeps max_tokens within what the
// SDK allows for a non-streaming request.
const (
	minThinkingBudget = 1024
	maxThinkingBudget = 12288
)

// Client implements port.InferenceClient using Anthropic's Messages API.
type Client struct {
	apiKey string
	model  string
	sdk    anthropic.Client
	log    *zap.Logger
}

// NewClient creates a Claude-backed inference client. SDK retries are
// disabled.
func NewClient(cfg *config.ProviderConfig, log *zap.Logger) *Client {
	model := cfg.DefaultModel
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = zap.NewNop()
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second}),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	return &Client{
		apiKey: cfg.APIKey,
		model:  model,
		sdk:    anthropic.NewClient(opts...),
		log:    log,
	}
}

func (c *Client) Generate(ctx context.Context, req port.InferenceRequest) (*port.InferenceResponse, error) {
	if c.apiKey == "" {
		return nil, domain.NewInferenceError(ProviderName, domain.InferenceConfiguration,
			errors.New("API key is not configured"))
	}

	blocks, err := toBlocks(req.Parts)
	if err != nil {
		return nil, domain.NewInferenceError(ProviderName, domain.InferenceConfiguration, err)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: outputTokens,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	}
	if req.ThinkingBudget > 0 {
		budget := int64(min(max(req.ThinkingBudget, minThinkingBudget), maxThinkingBudget))
		params.Thinking = anthropic.ThinkingConfigParamOfEnabled(budget)
		params.MaxTokens = budget + outputTokens
	}
	if req.ResponseMIMEType == "application/json" {
		params.System = []anthropic.TextBlockParam{{Text: "Respond with a single raw JSON object only."}}
	}

	start := time.Now()
	msg, err := c.sdk.Messages.New(ctx, params)
	if err != nil {
		return nil, classify(err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, domain.NewInferenceError(ProviderName, domain.InferenceEmptyResponse,
			fmt.Errorf("response contained no text (stop reason %q)", msg.StopReason))
	}

	c.log.Debug("claude.Client: generated content",
		zap.String("model", c.model), zap.Duration("elapsed", time.Since(start)), zap.Int("response_chars", len(text)))
	return &port.InferenceResponse{Text: text, Model: c.model, Provider: ProviderName}, nil
}

func toBlocks(parts []port.Part) ([]anthropic.ContentBlockParamUnion, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(parts))
	for i, p := range parts {
		switch {
		case p.Kind == port.PartText:
			blocks = append(blocks, anthropic.NewTextBlock(p.Text))
		case p.Kind == port.PartInline && p.MimeType == "application/pdf":
			blocks = append(blocks, anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{Data: p.Data}))
		case p.Kind == port.PartInline && strings.HasPrefix(p.MimeType, "image/"):
			blocks = append(blocks, anthropic.NewImageBlockBase64(p.MimeType, p.Data))
		default:
			return nil, fmt.Errorf("unsupported part %d (%s %s)", i, p.Kind, p.MimeType)
		}
	}
	return blocks, nil
}

// classify maps an SDK error to an InferenceError.
func classify(err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return domain.NewInferenceError(ProviderName, domain.InferenceTransport, err)
	}
	if apiErr.StatusCode == http.StatusTooManyRequests {
		var retryAfter time.Duration
		if apiErr.Response != nil {
			retryAfter = inference.ParseRetryAfterHeader(apiErr.Response.Header.Get("Retry-After"))
		}
		rl := inference.NewRateLimitError(ProviderName, err, retryAfter)
		return domain.NewInferenceError(ProviderName, domain.InferenceRateLimited, rl)
	}
	return domain.NewInferenceError(ProviderName, domain.InferenceRejected, err)
}
