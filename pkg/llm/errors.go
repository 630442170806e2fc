package llm

import "fmt"

// ModelIndexError is returned when an integer model spec cannot be resolved
// against the provider's dynamic model list. It is always fatal.
type ModelIndexError struct {
	Provider string
	Index    int
	Reason   string
}

func (e *ModelIndexError) Error() string {
	return fmt.Sprintf("cannot resolve model index %d for provider %q: %s", e.Index, e.Provider, e.Reason)
}
