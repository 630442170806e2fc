package providers

import (
	"os"
	"strconv"
	"strings"
)

// costEnvPrefix is the naming convention for per-provider cost overrides,
// e.g. CONFMORPH_COST_OPENAI=3.
const costEnvPrefix = "CONFMORPH_COST_"

// Descriptor holds the static metadata of a registered provider.
type Descriptor struct {
	// Name is the unique registry key, e.g. "openai".
	Name string

	// CostWeight ranks auto-selection preference; lower is preferred.
	// It is a relative weight, not a billing figure.
	CostWeight int

	// DefaultModel is used when the caller does not name a model.
	DefaultModel string

	// RequiresAPIKey marks providers that cannot run without a credential.
	RequiresAPIKey bool

	// APIKeyEnvVars are checked in order; the first non-empty value wins.
	APIKeyEnvVars []string

	// BaseURL points OpenAI-compatible adapters at the provider's endpoint.
	// Empty means the SDK default.
	BaseURL string
}

// ResolveAPIKey returns the effective credential: the override if given,
// otherwise the first non-empty recognized environment variable.
func (d Descriptor) ResolveAPIKey(override string) (string, bool) {
	if override != "" {
		return override, true
	}
	for _, name := range d.APIKeyEnvVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, true
		}
	}
	return "", false
}

// EffectiveCost applies the environment override for this provider's cost
// weight. Negative overrides are invalid and fall back to the static
// default; the returned flag reports whether that happened so callers can
// warn once.
func (d Descriptor) EffectiveCost() (cost int, ignoredNegative bool) {
	name := costEnvPrefix + strings.ToUpper(strings.ReplaceAll(d.Name, "-", "_"))
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return d.CostWeight, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return d.CostWeight, false
	}
	if v < 0 {
		return d.CostWeight, true
	}
	return v, false
}
