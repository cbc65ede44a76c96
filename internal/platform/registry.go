package platform

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry = make(map[string]Source)
	mu       sync.RWMutex
)

// Register makes a listing source available under name, replacing any
// previous registration.
func Register(name string, source Source) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = source
}

func Get(name string) (Source, error) {
	mu.RLock()
	defer mu.RUnlock()
	s, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("listing source %q not registered", name)
	}
	return s, nil
}

// List returns registered source names in sorted order.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
