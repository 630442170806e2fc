package providers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	name        string
	validateErr error
	response    string
}

func (a *stubAdapter) Name() string { return a.name }

func (a *stubAdapter) Generate(ctx context.Context, prompt, system string, opts GenerateOptions) (string, error) {
	return a.response, nil
}

func (a *stubAdapter) Validate(ctx context.Context) error { return a.validateErr }

func stubFactory(adapter *stubAdapter) Factory {
	return func(ctx context.Context, desc Descriptor, creds Credentials) (Adapter, error) {
		return adapter, nil
	}
}

func TestRegistryRegister(t *testing.T) {
	reg := NewRegistry()
	ok := stubFactory(&stubAdapter{name: "a"})

	require.NoError(t, reg.Register(Descriptor{Name: "a", CostWeight: 1}, ok))

	tests := []struct {
		name string
		desc Descriptor
	}{
		{"duplicate name", Descriptor{Name: "a", CostWeight: 1}},
		{"empty name", Descriptor{CostWeight: 1}},
		{"reserved name", Descriptor{Name: AutoProvider, CostWeight: 1}},
		{"negative cost", Descriptor{Name: "b", CostWeight: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, reg.Register(tt.desc, ok))
		})
	}
}

func TestRegistryListPreservesRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, reg.Register(Descriptor{Name: name}, stubFactory(&stubAdapter{name: name})))
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, reg.List())
}

func TestCreateUnknownProvider(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Descriptor{Name: "a"}, stubFactory(&stubAdapter{name: "a"})))

	_, _, err := reg.Create(context.Background(), "nope", Credentials{})
	var notFound *ProviderNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nope", notFound.Name)
	assert.Equal(t, []string{"a"}, notFound.Known)
}

func TestSelectBestPrefersCheapestAvailable(t *testing.T) {
	reg := NewRegistry()
	register := func(name string, cost int, envVar string) {
		require.NoError(t, reg.Register(Descriptor{
			Name:           name,
			CostWeight:     cost,
			RequiresAPIKey: true,
			APIKeyEnvVars:  []string{envVar},
		}, stubFactory(&stubAdapter{name: name})))
	}
	register("expensive", 90, "TEST_EXPENSIVE_KEY")
	register("cheap", 20, "TEST_CHEAP_KEY")
	register("mid", 55, "TEST_MID_KEY")

	// The cheapest provider has no credential, so selection moves on.
	t.Setenv("TEST_MID_KEY", "k1")
	t.Setenv("TEST_EXPENSIVE_KEY", "k2")

	adapter, desc, err := reg.SelectBest(context.Background(), Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "mid", desc.Name)
	assert.Equal(t, "mid", adapter.Name())
}

func TestSelectBestPicksCheapestCredentialed(t *testing.T) {
	reg := NewRegistry()
	register := func(name string, cost int, envVar string) {
		require.NoError(t, reg.Register(Descriptor{
			Name:           name,
			CostWeight:     cost,
			RequiresAPIKey: true,
			APIKeyEnvVars:  []string{envVar},
		}, stubFactory(&stubAdapter{name: name})))
	}
	register("a", 90, "TEST_A_KEY")
	register("b", 20, "TEST_B_KEY")
	register("c", 55, "TEST_C_KEY")

	t.Setenv("TEST_B_KEY", "kb")
	t.Setenv("TEST_C_KEY", "kc")

	_, desc, err := reg.SelectBest(context.Background(), Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "b", desc.Name)
}

func TestSelectBestSkipsFailedValidation(t *testing.T) {
	reg := NewRegistry()
	broken := &stubAdapter{name: "broken", validateErr: fmt.Errorf("endpoint unreachable")}
	working := &stubAdapter{name: "working"}
	require.NoError(t, reg.Register(Descriptor{Name: "broken", CostWeight: 1}, stubFactory(broken)))
	require.NoError(t, reg.Register(Descriptor{Name: "working", CostWeight: 2}, stubFactory(working)))

	_, desc, err := reg.SelectBest(context.Background(), Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "working", desc.Name)
}

func TestSelectBestExhaustionEnumeratesCandidates(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Descriptor{
		Name:           "keyed",
		CostWeight:     1,
		RequiresAPIKey: true,
		APIKeyEnvVars:  []string{"TEST_ABSENT_KEY"},
	}, stubFactory(&stubAdapter{name: "keyed"})))
	require.NoError(t, reg.Register(Descriptor{Name: "down", CostWeight: 2},
		stubFactory(&stubAdapter{name: "down", validateErr: errors.New("boom")})))

	_, _, err := reg.SelectBest(context.Background(), Credentials{})
	var unavailable *NoProviderAvailableError
	require.ErrorAs(t, err, &unavailable)
	require.Len(t, unavailable.Candidates, 2)

	assert.Equal(t, "keyed", unavailable.Candidates[0].Name)
	var missing *CredentialMissingError
	assert.ErrorAs(t, unavailable.Candidates[0].Err, &missing)

	assert.Equal(t, "down", unavailable.Candidates[1].Name)
	assert.Contains(t, unavailable.Candidates[1].Err.Error(), "validation failed")
}

func TestSelectBestCredentialOverrideUnlocksProvider(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Descriptor{
		Name:           "keyed",
		CostWeight:     1,
		RequiresAPIKey: true,
		APIKeyEnvVars:  []string{"TEST_ABSENT_KEY"},
	}, stubFactory(&stubAdapter{name: "keyed"})))

	_, desc, err := reg.SelectBest(context.Background(), Credentials{APIKey: "override"})
	require.NoError(t, err)
	assert.Equal(t, "keyed", desc.Name)
}

func TestSelectBestCostOverride(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Descriptor{Name: "first", CostWeight: 1}, stubFactory(&stubAdapter{name: "first"})))
	require.NoError(t, reg.Register(Descriptor{Name: "second", CostWeight: 2}, stubFactory(&stubAdapter{name: "second"})))

	t.Setenv("CONFMORPH_COST_FIRST", "50")
	_, desc, err := reg.SelectBest(context.Background(), Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "second", desc.Name)
}

func TestSelectBestNegativeCostOverrideIgnored(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Descriptor{Name: "first", CostWeight: 1}, stubFactory(&stubAdapter{name: "first"})))
	require.NoError(t, reg.Register(Descriptor{Name: "second", CostWeight: 2}, stubFactory(&stubAdapter{name: "second"})))

	// A negative override falls back to the static default, so ranking
	// is unchanged.
	t.Setenv("CONFMORPH_COST_SECOND", "-5")
	_, desc, err := reg.SelectBest(context.Background(), Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "first", desc.Name)
}

func TestSelectBestStableTieBreak(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"one", "two", "three"} {
		require.NoError(t, reg.Register(Descriptor{Name: name, CostWeight: 7}, stubFactory(&stubAdapter{name: name})))
	}
	_, desc, err := reg.SelectBest(context.Background(), Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "one", desc.Name)
}
