// Package ollama adapts a local Ollama daemon to the provider contract. No
// credential is required; availability means the daemon answers.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"

	"github.com/confmorph/confmorph/pkg/providers"
)

type Adapter struct {
	client *ollama.Client
	desc   providers.Descriptor
}

// New creates an adapter for the descriptor. Satisfies providers.Factory.
// The daemon endpoint comes from the OLLAMA_HOST environment, unless the
// caller overrides it with a base URL.
func New(_ context.Context, desc providers.Descriptor, creds providers.Credentials) (providers.Adapter, error) {
	if creds.BaseURL != "" {
		base, err := url.Parse(creds.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama base URL %q: %w", creds.BaseURL, err)
		}
		return &Adapter{client: ollama.NewClient(base, http.DefaultClient), desc: desc}, nil
	}
	client, err := ollama.ClientFromEnvironment()
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return &Adapter{client: client, desc: desc}, nil
}

func (a *Adapter) Name() string { return a.desc.Name }

func (a *Adapter) Generate(ctx context.Context, prompt, system string, opts providers.GenerateOptions) (string, error) {
	messages := make([]ollama.Message, 0, 2)
	if system != "" {
		messages = append(messages, ollama.Message{Role: "system", Content: system})
	}
	messages = append(messages, ollama.Message{Role: "user", Content: prompt})

	stream := false
	req := &ollama.ChatRequest{
		Model:    opts.Model,
		Messages: messages,
		Stream:   &stream,
		Options:  map[string]any{},
	}
	if opts.MaxTokens > 0 {
		req.Options["num_predict"] = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		req.Options["temperature"] = opts.Temperature
	}

	var sb strings.Builder
	err := a.client.Chat(ctx, req, func(res ollama.ChatResponse) error {
		sb.WriteString(res.Message.Content)
		return nil
	})
	if err != nil {
		// A local daemon that fails is almost always not running or
		// restarting; both are worth retrying.
		return "", &providers.TransientError{Provider: a.desc.Name, Err: err}
	}
	return sb.String(), nil
}

func (a *Adapter) Validate(ctx context.Context) error {
	if _, err := a.client.List(ctx); err != nil {
		return fmt.Errorf("ollama daemon unreachable: %w", err)
	}
	return nil
}

func (a *Adapter) ListModels(ctx context.Context) ([]string, error) {
	resp, err := a.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list local models: %w", err)
	}
	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.Name)
	}
	return names, nil
}
