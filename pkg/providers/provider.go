package providers

import "context"

// Adapter is the capability contract every generation provider implements.
type Adapter interface {
	// Name returns the registry name of the provider.
	Name() string

	// Generate produces text for the prompt. The system instruction may be
	// empty. Adapters classify their own failures: retryable conditions are
	// returned as *TransientError, everything else is fatal.
	Generate(ctx context.Context, prompt, system string, opts GenerateOptions) (string, error)

	// Validate performs a lightweight live check that the provider is
	// reachable and the credential (if any) is accepted.
	Validate(ctx context.Context) error
}

// ModelLister is implemented by adapters that expose a dynamic model list.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// GenerateOptions carries the resolved generation parameters.
type GenerateOptions struct {
	Model       string
	MaxTokens   int64
	Temperature float64
}

// Credentials are per-invocation overrides for a provider's static
// descriptor, typically sourced from CLI flags.
type Credentials struct {
	APIKey  string
	BaseURL string
}

// Factory instantiates an adapter for a descriptor. Factories must not
// perform network I/O; reachability is checked separately via Validate.
type Factory func(ctx context.Context, desc Descriptor, creds Credentials) (Adapter, error)
