package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"spendlens/internal/config"
	"spendlens/internal/domain"
	"spendlens/internal/inference"
	"spendlens/internal/port"
)

// ProviderName is the registry key of this provider.
const ProviderName = "gemini"

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-pro"

// Client implements port.InferenceClient using the Gemini API. The SDK
// client is created on first use so that a missing key surfaces as an
// error of the call, not of startup.
type Client struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
	log        *zap.Logger

	once    sync.Once
	sdk     *genai.Client
	initErr error
}

// NewClient creates a Gemini-backed inference client.
func NewClient(cfg *config.ProviderConfig, log *zap.Logger) *Client {
	model := cfg.DefaultModel
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = zap.NewNop()
	}
	// Zero timeout leaves bounding to the caller's context and the transport.
	httpClient := &http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second}
	return &Client{
		apiKey:     cfg.APIKey,
		model:      model,
		endpoint:   cfg.Endpoint,
		httpClient: httpClient,
		log:        log,
	}
}

func (c *Client) client(ctx context.Context) (*genai.Client, error) {
	c.once.Do(func() {
		if c.apiKey == "" {
			c.initErr = errors.New("API key is not configured")
			return
		}
		cc := &genai.ClientConfig{
			APIKey:     c.apiKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: c.httpClient,
		}
		if c.endpoint != "" {
			cc.HTTPOptions = genai.HTTPOptions{BaseURL: c.endpoint}
		}
		c.sdk, c.initErr = genai.NewClient(ctx, cc)
	})
	return c.sdk, c.initErr
}

func (c *Client) Generate(ctx context.Context, req port.InferenceRequest) (*port.InferenceResponse, error) {
	sdk, err := c.client(ctx)
	if err != nil {
		return nil, domain.NewInferenceError(ProviderName, domain.InferenceConfiguration, err)
	}

	parts, err := toParts(req.Parts)
	if err != nil {
		return nil, domain.NewInferenceError(ProviderName, domain.InferenceConfiguration, err)
	}

	genCfg := &genai.GenerateContentConfig{
		ResponseMIMEType: req.ResponseMIMEType,
	}
	if req.ThinkingBudget > 0 {
		genCfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(int32(req.ThinkingBudget))}
	}

	start := time.Now()
	resp, err := sdk.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, genCfg)
	if err != nil {
		return nil, classify(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, domain.NewInferenceError(ProviderName, domain.InferenceEmptyResponse,
			errors.New("response contained no text"))
	}

	c.log.Debug("gemini.Client: generated content",
		zap.String("model", c.model), zap.Duration("elapsed", time.Since(start)), zap.Int("response_chars", len(text)))
	return &port.InferenceResponse{Text: text, Model: c.model, Provider: ProviderName}, nil
}

func toParts(in []port.Part) ([]*genai.Part, error) {
	parts := make([]*genai.Part, 0, len(in))
	for i, p := range in {
		switch p.Kind {
		case port.PartInline:
			data, err := base64.StdEncoding.DecodeString(p.Data)
			if err != nil {
				return nil, fmt.Errorf("decoding inline part %d: %w", i, err)
			}
			parts = append(parts, genai.NewPartFromBytes(data, p.MimeType))
		case port.PartText:
			parts = append(parts, genai.NewPartFromText(p.Text))
		default:
			return nil, fmt.Errorf("unsupported part kind %q", p.Kind)
		}
	}
	return parts, nil
}

// classify maps an SDK error to an InferenceError.
func classify(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return domain.NewInferenceError(ProviderName, domain.InferenceTransport, err)
	}
	if apiErr.Code == http.StatusTooManyRequests {
		rl := inference.NewRateLimitError(ProviderName, err, retryDelay(apiErr.Details))
		return domain.NewInferenceError(ProviderName, domain.InferenceRateLimited, rl)
	}
	return domain.NewInferenceError(ProviderName, domain.InferenceRejected,
		fmt.Errorf("status %d %s: %s", apiErr.Code, apiErr.Status, apiErr.Message))
}

// retryDelay extracts the google.rpc.RetryInfo delay from error details.
func retryDelay(details []map[string]any) time.Duration {
	for _, d := range details {
		typ, _ := d["@type"].(string)
		if !strings.HasSuffix(typ, "RetryInfo") {
			continue
		}
		raw, _ := d["retryDelay"].(string)
		if delay, err := time.ParseDuration(raw); err == nil {
			return delay
		}
	}
	return 0
}
