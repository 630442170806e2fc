// Package gemini adapts the Gemini API (via the official genai SDK) to the
// provider contract.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/confmorph/confmorph/pkg/providers"
)

type Adapter struct {
	client *genai.Client
	desc   providers.Descriptor
}

// New creates an adapter for the descriptor. Satisfies providers.Factory.
func New(ctx context.Context, desc providers.Descriptor, creds providers.Credentials) (providers.Adapter, error) {
	key, ok := desc.ResolveAPIKey(creds.APIKey)
	if !ok {
		return nil, &providers.CredentialMissingError{Provider: desc.Name, EnvVars: desc.APIKeyEnvVars}
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Adapter{client: client, desc: desc}, nil
}

func (a *Adapter) Name() string { return a.desc.Name }

func (a *Adapter) Generate(ctx context.Context, prompt, system string, opts providers.GenerateOptions) (string, error) {
	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(opts.Temperature))
	}

	resp, err := a.client.Models.GenerateContent(ctx, opts.Model, genai.Text(prompt), config)
	if err != nil {
		return "", a.classify(err)
	}
	return resp.Text(), nil
}

func (a *Adapter) Validate(ctx context.Context) error {
	_, err := a.client.Models.List(ctx, &genai.ListModelsConfig{PageSize: 1})
	if err != nil {
		return fmt.Errorf("provider %q unreachable: %w", a.desc.Name, err)
	}
	return nil
}

func (a *Adapter) ListModels(ctx context.Context) ([]string, error) {
	var names []string
	page, err := a.client.Models.List(ctx, &genai.ListModelsConfig{})
	for err == nil {
		for _, m := range page.Items {
			names = append(names, m.Name)
		}
		page, err = page.Next(ctx)
	}
	if !errors.Is(err, genai.ErrPageDone) {
		return nil, fmt.Errorf("list models for %q: %w", a.desc.Name, err)
	}
	return names, nil
}

func (a *Adapter) classify(err error) error {
	var apierr genai.APIError
	if errors.As(err, &apierr) {
		if providers.TransientStatus(apierr.Code) {
			return &providers.TransientError{Provider: a.desc.Name, Err: err}
		}
		return fmt.Errorf("provider %q request failed: %w", a.desc.Name, err)
	}
	return &providers.TransientError{Provider: a.desc.Name, Err: err}
}
