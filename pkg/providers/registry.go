package providers

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/confmorph/confmorph/pkg/logging"
)

// AutoProvider selects the cheapest available provider, see SelectBest.
const AutoProvider = "auto"

// validateTimeout bounds the live check performed per candidate during
// auto-selection, so one unreachable endpoint cannot stall the whole run.
const validateTimeout = 10 * time.Second

type registration struct {
	desc    Descriptor
	factory Factory
}

// Registry is the catalog of generation providers. It is populated once at
// startup and read-only afterward; the mutex only guards against embedding
// callers that register late.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]registration
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registration)}
}

// Register adds a provider. Names must be unique and non-empty.
func (r *Registry) Register(desc Descriptor, factory Factory) error {
	if desc.Name == "" {
		return fmt.Errorf("provider descriptor must have a name")
	}
	if desc.Name == AutoProvider {
		return fmt.Errorf("provider name %q is reserved", AutoProvider)
	}
	if factory == nil {
		return fmt.Errorf("provider %q: factory is required", desc.Name)
	}
	if desc.CostWeight < 0 {
		return fmt.Errorf("provider %q: cost weight must be non-negative", desc.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[desc.Name]; exists {
		return fmt.Errorf("provider %q is already registered", desc.Name)
	}
	r.entries[desc.Name] = registration{desc: desc, factory: factory}
	r.order = append(r.order, desc.Name)
	return nil
}

// Get returns the descriptor for a registered provider.
func (r *Registry) Get(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[name]
	return reg.desc, ok
}

// List returns all registered provider names in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Create instantiates the named provider. The name "auto" triggers
// cost-ranked selection across all registered providers.
func (r *Registry) Create(ctx context.Context, name string, creds Credentials) (Adapter, Descriptor, error) {
	if name == AutoProvider {
		return r.SelectBest(ctx, creds)
	}
	r.mu.RLock()
	reg, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, Descriptor{}, &ProviderNotFoundError{Name: name, Known: r.List()}
	}
	adapter, err := reg.factory(ctx, reg.desc, creds)
	if err != nil {
		return nil, Descriptor{}, fmt.Errorf("create provider %q: %w", name, err)
	}
	return adapter, reg.desc, nil
}

// SelectBest ranks all providers ascending by effective cost weight (ties
// broken by registration order) and returns the first whose credential is
// present and whose live validation succeeds. Exhaustion yields a
// NoProviderAvailableError naming every candidate and its failure.
func (r *Registry) SelectBest(ctx context.Context, creds Credentials) (Adapter, Descriptor, error) {
	r.mu.RLock()
	ranked := make([]registration, 0, len(r.order))
	for _, name := range r.order {
		ranked = append(ranked, r.entries[name])
	}
	r.mu.RUnlock()

	logger := logging.GetLogger()
	costs := make(map[string]int, len(ranked))
	for _, reg := range ranked {
		cost, ignoredNegative := reg.desc.EffectiveCost()
		if ignoredNegative {
			logger.Logf("ignoring negative cost override for provider %q, using default %d", reg.desc.Name, reg.desc.CostWeight)
		}
		costs[reg.desc.Name] = cost
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return costs[ranked[i].desc.Name] < costs[ranked[j].desc.Name]
	})

	var failures []Candidate
	for _, reg := range ranked {
		desc := reg.desc
		if desc.RequiresAPIKey {
			if _, ok := desc.ResolveAPIKey(creds.APIKey); !ok {
				failures = append(failures, Candidate{Name: desc.Name, Err: &CredentialMissingError{Provider: desc.Name, EnvVars: desc.APIKeyEnvVars}})
				continue
			}
		}
		adapter, err := reg.factory(ctx, desc, creds)
		if err != nil {
			failures = append(failures, Candidate{Name: desc.Name, Err: err})
			continue
		}
		vctx, cancel := context.WithTimeout(ctx, validateTimeout)
		err = adapter.Validate(vctx)
		cancel()
		if err != nil {
			failures = append(failures, Candidate{Name: desc.Name, Err: fmt.Errorf("validation failed: %w", err)})
			continue
		}
		logger.Logf("auto-selected provider %q (cost %d)", desc.Name, costs[desc.Name])
		return adapter, desc, nil
	}
	return nil, Descriptor{}, &NoProviderAvailableError{Candidates: failures}
}
