package engine

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates an engine driver instance.
type Factory func() Engine

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Factory)
)

// Register adds a driver factory under the given name.
// Panics if the name is already registered.
func Register(name string, factory Factory) {
	driversMu.Lock()
	defer driversMu.Unlock()

	if _, exists := drivers[name]; exists {
		panic(fmt.Sprintf("engine driver already registered: %s", name))
	}
	drivers[name] = factory
}

// New instantiates the named driver.
func New(name string) (Engine, error) {
	driversMu.RLock()
	factory, ok := drivers[name]
	driversMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown engine driver: %s", name)
	}
	return factory(), nil
}

// Drivers returns the registered driver names, sorted.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()

	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
