// Package llm wraps a selected provider adapter with retry, model-index
// resolution and optional response caching.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/confmorph/confmorph/pkg/logging"
	"github.com/confmorph/confmorph/pkg/providers"
)

// RetryPolicy bounds the retry loop for transient provider failures.
// MaxRetries counts total attempts; the delay before attempt n+1 is
// InitialDelay * BackoffFactor^n.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	BackoffFactor float64
}

// DefaultRetryPolicy mirrors the adapter defaults: three attempts, one
// second initial delay, doubling.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, InitialDelay: time.Second, BackoffFactor: 2.0}
}

// GenerateRequest is one fully-specified generation call. Model may be a
// literal model name or an integer index into the provider's dynamic model
// list; empty means the provider's default model.
type GenerateRequest struct {
	Prompt      string
	System      string
	Model       string
	MaxTokens   int64
	Temperature float64
}

// Client drives a provider adapter.
type Client struct {
	adapter providers.Adapter
	desc    providers.Descriptor
	retry   RetryPolicy
	cache   *ResponseCache
	sleep   func(ctx context.Context, d time.Duration) error
	logger  *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

// WithCache enables response caching.
func WithCache(cache *ResponseCache) Option {
	return func(c *Client) { c.cache = cache }
}

// withSleep replaces the backoff sleep, for tests.
func withSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = sleep }
}

// New creates a generation client around an instantiated adapter.
func New(adapter providers.Adapter, desc providers.Descriptor, opts ...Option) *Client {
	c := &Client{
		adapter: adapter,
		desc:    desc,
		retry:   DefaultRetryPolicy(),
		sleep:   sleepContext,
		logger:  logging.GetLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate produces text for the request. Transient failures are retried
// with exponential backoff until the budget is exhausted; fatal failures
// surface immediately.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = c.desc.DefaultModel
	}
	model, err := c.resolveModel(ctx, model)
	if err != nil {
		return "", err
	}

	var cacheKey string
	if c.cache != nil {
		cacheKey = c.cache.Key(c.desc.Name, model, req)
		if cached, ok := c.cache.Get(cacheKey); ok {
			c.logger.Logf("cache hit for provider %q model %q", c.desc.Name, model)
			return cached, nil
		}
	}

	opts := providers.GenerateOptions{
		Model:       model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	var lastErr error
	for attempt := 0; attempt < c.retry.MaxRetries; attempt++ {
		out, err := c.adapter.Generate(ctx, req.Prompt, req.System, opts)
		if err == nil {
			if c.cache != nil {
				if cerr := c.cache.Put(cacheKey, out); cerr != nil {
					c.logger.Logf("response cache write failed: %v", cerr)
				}
			}
			return out, nil
		}

		var transient *providers.TransientError
		if !errors.As(err, &transient) {
			return "", fmt.Errorf("generation with provider %q model %q: %w", c.desc.Name, model, err)
		}
		lastErr = err
		if attempt < c.retry.MaxRetries-1 {
			delay := backoffDelay(c.retry, attempt)
			c.logger.Logf("attempt %d/%d against %q failed (%v), retrying in %s", attempt+1, c.retry.MaxRetries, c.desc.Name, err, delay)
			if serr := c.sleep(ctx, delay); serr != nil {
				return "", serr
			}
		}
	}
	return "", fmt.Errorf("generation with provider %q model %q failed after %d attempts: %w", c.desc.Name, model, c.retry.MaxRetries, lastErr)
}

// resolveModel substitutes an integer model spec with the entry at that
// position in the provider's dynamic model list. Negative indices count
// from the end.
func (c *Client) resolveModel(ctx context.Context, model string) (string, error) {
	idx, err := strconv.Atoi(model)
	if err != nil {
		return model, nil
	}
	lister, ok := c.adapter.(providers.ModelLister)
	if !ok {
		return "", &ModelIndexError{Provider: c.desc.Name, Index: idx, Reason: "provider has no dynamic model list"}
	}
	models, err := lister.ListModels(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve model index %d for %q: %w", idx, c.desc.Name, err)
	}
	pos := idx
	if pos < 0 {
		pos += len(models)
	}
	if pos < 0 || pos >= len(models) {
		return "", &ModelIndexError{Provider: c.desc.Name, Index: idx, Reason: fmt.Sprintf("index out of range for %d models", len(models))}
	}
	c.logger.Logf("model index %d resolved to %q for provider %q", idx, models[pos], c.desc.Name)
	return models[pos], nil
}

func backoffDelay(p RetryPolicy, attempt int) time.Duration {
	delay := float64(p.InitialDelay)
	for i := 0; i < attempt; i++ {
		delay *= p.BackoffFactor
	}
	return time.Duration(delay)
}

// sleepContext blocks for d or until the context is cancelled, whichever
// comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
