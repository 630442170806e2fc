package providers

import (
	"fmt"
	"strings"
)

// ProviderNotFoundError is returned when an explicitly named provider is not
// registered.
type ProviderNotFoundError struct {
	Name  string
	Known []string
}

func (e *ProviderNotFoundError) Error() string {
	return fmt.Sprintf("unknown provider %q (registered: %s)", e.Name, strings.Join(e.Known, ", "))
}

// CredentialMissingError is returned when a provider requires an API key and
// none of its recognized environment variables is set.
type CredentialMissingError struct {
	Provider string
	EnvVars  []string
}

func (e *CredentialMissingError) Error() string {
	return fmt.Sprintf("provider %q requires an API key; set one of %s", e.Provider, strings.Join(e.EnvVars, ", "))
}

// Candidate records why one provider was rejected during auto-selection.
type Candidate struct {
	Name string
	Err  error
}

// NoProviderAvailableError is returned when auto-selection exhausted every
// registered provider. It enumerates each candidate and why it failed.
type NoProviderAvailableError struct {
	Candidates []Candidate
}

func (e *NoProviderAvailableError) Error() string {
	var sb strings.Builder
	sb.WriteString("no generation provider available")
	for _, c := range e.Candidates {
		fmt.Fprintf(&sb, "\n  %s: %v", c.Name, c.Err)
	}
	return sb.String()
}

// TransientError marks a provider failure as retryable: rate limiting or a
// temporary connectivity / service-unavailable condition. Anything not
// wrapped in TransientError is treated as fatal by the generation client.
type TransientError struct {
	Provider string
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("provider %q transient failure: %v", e.Provider, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// TransientStatus reports whether an HTTP status code indicates a condition
// worth retrying.
func TransientStatus(code int) bool {
	switch code {
	case 408, 429, 500, 502, 503, 504:
		return true
	}
	return false
}
