// Package registry provides a global registry for wallet provider factories.
// Providers register themselves in init() functions, allowing the CLI to pick
// one by name from configuration without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/trust-snake/internal/config"
	"github.com/vovakirdan/trust-snake/internal/wallet"
)

// ProviderInfo contains metadata about a registered provider.
type ProviderInfo struct {
	Name        string
	Description string
}

// Factory creates a new provider instance. Each page (local terminal or SSH
// session) gets its own instance and closes it when done.
type Factory func(cfg config.Config, logger *log.Logger) (wallet.Provider, error)

type entry struct {
	factory     Factory
	description string
}

var (
	factories = make(map[string]entry)
	mu        sync.RWMutex
)

// Register adds a provider factory to the registry.
// Typically called from an init() function.
// Panics if a provider with the same name is already registered.
func Register(name, description string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("registry: provider %q already registered", name))
	}

	factories[name] = entry{factory: f, description: description}
}

// List returns information about all registered providers, sorted by name.
func List() []ProviderInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]ProviderInfo, 0, len(factories))
	for name, e := range factories {
		result = append(result, ProviderInfo{
			Name:        name,
			Description: e.description,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// Create instantiates a provider by name.
// Returns an error if the name is not registered or the factory fails.
func Create(name string, cfg config.Config, logger *log.Logger) (wallet.Provider, error) {
	mu.RLock()
	e, ok := factories[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown provider %q", name)
	}

	p, err := e.factory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("registry: create %s: %w", name, err)
	}
	return p, nil
}

// Exists checks if a provider with the given name is registered.
func Exists(name string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[name]
	return ok
}
