package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/suPer8Hu/corecord/internal/config"
)

type ProviderFactory func(ctx context.Context, model string) (Provider, error)

// Registry resolves providers by name. The first registered name is the default.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
	fallback  string
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ProviderFactory)}
}

func (r *Registry) Register(name string, f ProviderFactory) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fallback == "" {
		r.fallback = name
	}
	r.factories[name] = f
}

// Get returns the named provider; an empty name selects the default one.
func (r *Registry) Get(ctx context.Context, name string, model string) (Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.RLock()
	if name == "" {
		name = r.fallback
	}
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown ai provider: %q", name)
	}
	return f(ctx, model)
}

// Default is shorthand for Get(ctx, "", "").
func (r *Registry) Default(ctx context.Context) (Provider, error) {
	return r.Get(ctx, "", "")
}

// NewConfiguredRegistry registers ollama and openrouter with cfg.AIProvider as the default.
func NewConfiguredRegistry(cfg config.Config) *Registry {
	factories := map[string]ProviderFactory{
		"ollama": func(ctx context.Context, model string) (Provider, error) {
			m := strings.TrimSpace(model)
			if m == "" {
				m = cfg.OllamaModel
			}
			return NewOllamaProvider(cfg.OllamaBaseURL, m), nil
		},
		"openrouter": func(ctx context.Context, model string) (Provider, error) {
			if cfg.OpenRouterAPIKey == "" {
				return nil, fmt.Errorf("openrouter: OPENROUTER_API_KEY is empty")
			}
			m := strings.TrimSpace(model)
			if m == "" {
				m = cfg.OpenRouterModel
			}
			return NewOpenRouterProvider(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, m, cfg.OpenRouterSiteURL, cfg.OpenRouterAppName), nil
		},
	}

	reg := NewRegistry()
	first := strings.ToLower(strings.TrimSpace(cfg.AIProvider))
	if f, ok := factories[first]; ok {
		reg.Register(first, f)
	}
	for _, name := range []string{"ollama", "openrouter"} {
		if name != first {
			reg.Register(name, factories[name])
		}
	}
	return reg
}
