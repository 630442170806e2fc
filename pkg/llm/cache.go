package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ResponseCache is a content-addressable cache of generation responses on
// disk. The key covers the full effective request, so identical requests
// short-circuit to the stored response. There is no cross-process locking;
// concurrent writers to the same key overwrite each other.
type ResponseCache struct {
	dir string
}

// NewResponseCache opens (creating if needed) a cache directory.
func NewResponseCache(dir string) (*ResponseCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	return &ResponseCache{dir: dir}, nil
}

// DefaultCacheDir is the cache location used when none is configured.
func DefaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".confmorph", "cache")
	}
	return filepath.Join(home, ".confmorph", "cache")
}

// Key derives the cache key for a request against a provider and resolved
// model.
func (rc *ResponseCache) Key(provider, model string, req GenerateRequest) string {
	payload, _ := json.Marshal(struct {
		Provider    string  `json:"provider"`
		Model       string  `json:"model"`
		Prompt      string  `json:"prompt"`
		System      string  `json:"system"`
		MaxTokens   int64   `json:"max_tokens"`
		Temperature float64 `json:"temperature"`
	}{provider, model, req.Prompt, req.System, req.MaxTokens, req.Temperature})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached response for key, if any.
func (rc *ResponseCache) Get(key string) (string, bool) {
	data, err := os.ReadFile(rc.path(key))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Put stores a response under key. Last writer wins.
func (rc *ResponseCache) Put(key, response string) error {
	return os.WriteFile(rc.path(key), []byte(response), 0o644)
}

func (rc *ResponseCache) path(key string) string {
	return filepath.Join(rc.dir, key+".txt")
}
