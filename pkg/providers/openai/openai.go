// Package openai adapts OpenAI and OpenAI-compatible chat completion
// endpoints (DeepSeek, OpenRouter, Mistral) to the provider contract. The
// endpoint is selected by the descriptor's base URL.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/confmorph/confmorph/pkg/providers"
)

type Adapter struct {
	client openai.Client
	desc   providers.Descriptor
}

// New creates an adapter for the descriptor. Satisfies providers.Factory.
func New(_ context.Context, desc providers.Descriptor, creds providers.Credentials) (providers.Adapter, error) {
	key, ok := desc.ResolveAPIKey(creds.APIKey)
	if desc.RequiresAPIKey && !ok {
		return nil, &providers.CredentialMissingError{Provider: desc.Name, EnvVars: desc.APIKeyEnvVars}
	}
	opts := []option.RequestOption{option.WithAPIKey(key)}
	baseURL := desc.BaseURL
	if creds.BaseURL != "" {
		baseURL = creds.BaseURL
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Adapter{client: openai.NewClient(opts...), desc: desc}, nil
}

func (a *Adapter) Name() string { return a.desc.Name }

func (a *Adapter) Generate(ctx context.Context, prompt, system string, opts providers.GenerateOptions) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(opts.Model),
		Messages: messages,
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(opts.MaxTokens)
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", a.classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("provider %q returned no choices", a.desc.Name)
	}
	return resp.Choices[0].Message.Content, nil
}

func (a *Adapter) Validate(ctx context.Context) error {
	_, err := a.client.Models.List(ctx)
	if err != nil {
		return fmt.Errorf("provider %q unreachable: %w", a.desc.Name, err)
	}
	return nil
}

func (a *Adapter) ListModels(ctx context.Context) ([]string, error) {
	page, err := a.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models for %q: %w", a.desc.Name, err)
	}
	names := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		names = append(names, m.ID)
	}
	return names, nil
}

// classify wraps retryable SDK failures in TransientError. Authorization
// and malformed-request failures stay fatal.
func (a *Adapter) classify(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		if providers.TransientStatus(apierr.StatusCode) {
			return &providers.TransientError{Provider: a.desc.Name, Err: err}
		}
		return fmt.Errorf("provider %q request failed: %w", a.desc.Name, err)
	}
	// No API error type means the request never got a response; treat
	// connectivity problems as transient.
	return &providers.TransientError{Provider: a.desc.Name, Err: err}
}
