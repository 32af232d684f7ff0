package inference

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"spendlens/internal/domain"
	"spendlens/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackClient tries clients in order, skipping those whose circuit is
// open after a rate limit. It implements port.InferenceClient.
type FallbackClient struct {
	clients  []port.InferenceClient
	circuits []*circuitState
	names    []string
	log      *zap.Logger
	now      func() time.Time
}

// NewFallbackClient creates a FallbackClient from an ordered list of clients
// and their names.
func NewFallbackClient(clients []port.InferenceClient, names []string, log *zap.Logger) *FallbackClient {
	circuits := make([]*circuitState, len(clients))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FallbackClient{
		clients:  clients,
		circuits: circuits,
		names:    names,
		log:      log,
		now:      time.Now,
	}
}

func (f *FallbackClient) Generate(ctx context.Context, req port.InferenceRequest) (*port.InferenceResponse, error) {
	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, c := range f.clients {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.log.Info("inference.FallbackClient: skipping provider",
				zap.String("provider", f.names[i]), zap.Time("circuit_open_until", resetAt))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		resp, err := c.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		f.log.Warn("inference.FallbackClient: provider failed",
			zap.String("provider", f.names[i]), zap.String("error_kind", domain.ErrorKind(err)), zap.Error(err))
		lastErr = err

		if ctx.Err() != nil {
			return nil, err
		}

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(f.now())
		if retryAfter < 0 {
			retryAfter = time.Second
		}
		rl := NewRateLimitError("all", errors.New("all providers rate limited"), retryAfter)
		return nil, domain.NewInferenceError("all", domain.InferenceRateLimited, rl)
	}

	if len(f.clients) == 1 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}
