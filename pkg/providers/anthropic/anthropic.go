// Package anthropic adapts the Anthropic Messages API to the provider
// contract.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/confmorph/confmorph/pkg/providers"
)

const defaultMaxTokens = 1024

type Adapter struct {
	client anthropic.Client
	desc   providers.Descriptor
}

// New creates an adapter for the descriptor. Satisfies providers.Factory.
func New(_ context.Context, desc providers.Descriptor, creds providers.Credentials) (providers.Adapter, error) {
	key, ok := desc.ResolveAPIKey(creds.APIKey)
	if !ok {
		return nil, &providers.CredentialMissingError{Provider: desc.Name, EnvVars: desc.APIKeyEnvVars}
	}
	opts := []option.RequestOption{option.WithAPIKey(key)}
	if creds.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(creds.BaseURL))
	}
	return &Adapter{client: anthropic.NewClient(opts...), desc: desc}, nil
}

func (a *Adapter) Name() string { return a.desc.Name }

func (a *Adapter) Generate(ctx context.Context, prompt, system string, opts providers.GenerateOptions) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(opts.Model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", a.classify(err)
	}
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

func (a *Adapter) Validate(ctx context.Context) error {
	_, err := a.client.Models.List(ctx, anthropic.ModelListParams{})
	if err != nil {
		return fmt.Errorf("provider %q unreachable: %w", a.desc.Name, err)
	}
	return nil
}

func (a *Adapter) ListModels(ctx context.Context) ([]string, error) {
	page, err := a.client.Models.List(ctx, anthropic.ModelListParams{})
	if err != nil {
		return nil, fmt.Errorf("list models for %q: %w", a.desc.Name, err)
	}
	names := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		names = append(names, m.ID)
	}
	return names, nil
}

func (a *Adapter) classify(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		if providers.TransientStatus(apierr.StatusCode) {
			return &providers.TransientError{Provider: a.desc.Name, Err: err}
		}
		return fmt.Errorf("provider %q request failed: %w", a.desc.Name, err)
	}
	return &providers.TransientError{Provider: a.desc.Name, Err: err}
}
