package llm

import (
	"fmt"
	"sync"

	"github.com/nulzo/prompt-gateway/internal/config"
)

// Factory builds an adapter from its provider configuration.
type Factory func(cfg config.ProviderConfig) (Adapter, error)

var (
	mu        sync.RWMutex
	factories = make(map[Provider]Factory)
)

// Register makes an adapter factory available. It is called from the init
// function of each vendor package and panics on duplicates.
func Register(p Provider, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := factories[p]; exists {
		panic(fmt.Sprintf("adapter factory %s already registered", p))
	}
	factories[p] = f
}

// Get returns the factory registered for p.
func Get(p Provider) (Factory, error) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := factories[p]
	if !ok {
		return nil, fmt.Errorf("adapter factory not found for provider: %s", p)
	}
	return f, nil
}

// NewAdapter looks up the factory for p and invokes it.
func NewAdapter(p Provider, cfg config.ProviderConfig) (Adapter, error) {
	f, err := Get(p)
	if err != nil {
		return nil, err
	}
	return f(cfg)
}
