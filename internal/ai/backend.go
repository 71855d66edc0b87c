package ai

import (
	"fmt"
	"sort"
	"time"
)

// Provider identifiers accepted by NewBackend.
const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

// BackendConfig carries the knobs shared by backends.
type BackendConfig struct {
	HTTPTimeout time.Duration
	// BaseURL overrides the provider endpoint when set.
	BaseURL string
}

// BackendFactory builds a Backend from BackendConfig.
type BackendFactory func(BackendConfig) Backend

var registry = map[string]BackendFactory{}

// RegisterBackend registers a provider name with its factory.
func RegisterBackend(name string, f BackendFactory) { registry[name] = f }

// NewBackend creates the Backend registered under name.
func NewBackend(name string, cfg BackendConfig) (Backend, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (available: %v)", name, Providers())
	}
	return f(cfg), nil
}

// Providers lists registered provider names in sorted order.
func Providers() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func init() {
	RegisterBackend(ProviderGemini, func(c BackendConfig) Backend {
		return NewGemini(c.BaseURL, c.HTTPTimeout)
	})
	RegisterBackend(ProviderOpenRouter, func(c BackendConfig) Backend {
		return NewOpenRouter(c.BaseURL, c.HTTPTimeout)
	})
}
