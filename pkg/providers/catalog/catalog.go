// Package catalog wires the built-in provider adapters into a registry.
// Registration is an explicit call made once at process start; there are no
// import-time side effects.
package catalog

import (
	"github.com/confmorph/confmorph/pkg/providers"
	"github.com/confmorph/confmorph/pkg/providers/anthropic"
	"github.com/confmorph/confmorph/pkg/providers/gemini"
	"github.com/confmorph/confmorph/pkg/providers/ollama"
	"github.com/confmorph/confmorph/pkg/providers/openai"
)

// Cost weights are relative preference ranks for auto-selection, not
// billing figures. They can be overridden per provider through
// CONFMORPH_COST_<NAME>.
var defaults = []struct {
	desc    providers.Descriptor
	factory providers.Factory
}{
	{
		desc: providers.Descriptor{
			Name:         "ollama",
			CostWeight:   5,
			DefaultModel: "llama3.2",
		},
		factory: ollama.New,
	},
	{
		desc: providers.Descriptor{
			Name:           "anthropic",
			CostWeight:     10,
			DefaultModel:   "claude-3-5-sonnet-20241022",
			RequiresAPIKey: true,
			APIKeyEnvVars:  []string{"ANTHROPIC_API_KEY"},
		},
		factory: anthropic.New,
	},
	{
		desc: providers.Descriptor{
			Name:           "gemini",
			CostWeight:     12,
			DefaultModel:   "gemini-2.0-flash",
			RequiresAPIKey: true,
			APIKeyEnvVars:  []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "GOOGLE_GENERATIVE_AI_API_KEY"},
		},
		factory: gemini.New,
	},
	{
		desc: providers.Descriptor{
			Name:           "openai",
			CostWeight:     15,
			DefaultModel:   "gpt-4o-mini",
			RequiresAPIKey: true,
			APIKeyEnvVars:  []string{"OPENAI_API_KEY"},
		},
		factory: openai.New,
	},
	{
		desc: providers.Descriptor{
			Name:           "deepseek",
			CostWeight:     20,
			DefaultModel:   "deepseek-chat",
			RequiresAPIKey: true,
			APIKeyEnvVars:  []string{"DEEPSEEK_API_KEY"},
			BaseURL:        "https://api.deepseek.com/v1",
		},
		factory: openai.New,
	},
	{
		desc: providers.Descriptor{
			Name:           "openrouter",
			CostWeight:     22,
			DefaultModel:   "openai/gpt-4o-mini",
			RequiresAPIKey: true,
			APIKeyEnvVars:  []string{"OPENROUTER_API_KEY"},
			BaseURL:        "https://openrouter.ai/api/v1",
		},
		factory: openai.New,
	},
	{
		desc: providers.Descriptor{
			Name:           "mistral",
			CostWeight:     25,
			DefaultModel:   "mistral-medium-latest",
			RequiresAPIKey: true,
			APIKeyEnvVars:  []string{"MISTRAL_API_KEY"},
			BaseURL:        "https://api.mistral.ai/v1",
		},
		factory: openai.New,
	},
}

// RegisterDefaults populates reg with every built-in provider. Calling it
// twice on the same registry is a no-op for already-registered names.
func RegisterDefaults(reg *providers.Registry) error {
	for _, d := range defaults {
		if _, exists := reg.Get(d.desc.Name); exists {
			continue
		}
		if err := reg.Register(d.desc, d.factory); err != nil {
			return err
		}
	}
	return nil
}

// NewDefaultRegistry builds a registry containing the built-in providers.
func NewDefaultRegistry() (*providers.Registry, error) {
	reg := providers.NewRegistry()
	if err := RegisterDefaults(reg); err != nil {
		return nil, err
	}
	return reg, nil
}
