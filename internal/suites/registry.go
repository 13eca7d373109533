// Package suites is the registry of runnable suite collections. Packages
// register factories from init functions and commands build fresh suites
// from them for every run, because a suite's registration closes for good
// once it has been run.
package suites

import (
	"fmt"
	"sort"
	"sync"

	"specrun/internal/engine"
	"specrun/pkg/logging"
)

// Factory builds a new, open suite.
type Factory func() *engine.Suite

var (
	factories = make(map[string]Factory)
	order     []string

	registryMutex sync.RWMutex
)

// Register adds factory under name. Suites are built in registration order.
// Registering a name twice panics, as it is a programming error.
func Register(name string, factory Factory) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	if factory == nil {
		panic(fmt.Sprintf("suites: nil factory for %q", name))
	}
	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("suites: %q registered twice", name))
	}
	logging.Debug("Suites", "Registering suite factory %s", name)
	factories[name] = factory
	order = append(order, name)
}

// Names returns the registered names in registration order.
func Names() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	return append([]string(nil), order...)
}

// SortedNames returns the registered names in lexical order.
func SortedNames() []string {
	names := Names()
	sort.Strings(names)
	return names
}

// Build constructs one fresh suite per registered factory. Construction
// errors stay on the returned suites and are reported when they run.
func Build() []*engine.Suite {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	built := make([]*engine.Suite, 0, len(order))
	for _, name := range order {
		built = append(built, factories[name]())
	}
	return built
}

// Get builds the suite registered under name.
func Get(name string) (*engine.Suite, error) {
	registryMutex.RLock()
	factory, ok := factories[name]
	registryMutex.RUnlock()
	if !ok {
		return nil, fmt.Errorf("suite %q: %w", name, engine.ErrNotFound)
	}
	return factory(), nil
}

// Reset removes every registration (useful for testing).
func Reset() {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	factories = make(map[string]Factory)
	order = nil
}
