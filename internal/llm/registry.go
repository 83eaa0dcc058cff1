package llm

import (
	"sort"
	"strings"
	"sync"

	"github.com/cnmzsjbz199328/LazyDog/internal/platform/logger"
	"go.uber.org/zap"
)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register adds a provider factory under its type key. Keys are lowercased;
// a collision overwrites the previous registration with a warning.
func Register(providerType string, f Factory) {
	key := strings.ToLower(providerType)

	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[key]; exists {
		logger.Warn("provider factory already registered, overwriting", zap.String("type", key))
	}
	factories[key] = f
}

// Lookup returns the factory for a type, case-insensitively. A missing type
// is a configuration error on the caller's side, not something to retry.
func Lookup(providerType string) (Factory, bool) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[strings.ToLower(providerType)]
	return f, ok
}

// Types lists the registered provider types, sorted.
func Types() []string {
	mu.RLock()
	defer mu.RUnlock()

	types := make([]string, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
