package module

import (
	"fmt"
	"sort"
)

// CreateFunc builds a module from its argument string.
type CreateFunc func(impl Impl, argument string) (*Module, error)

// Entry is a registered module type.
type Entry struct {
	Name   string
	Info   Info
	Create CreateFunc
}

var registry = map[string]Entry{}

// Register adds a module type. Registering a name twice panics.
func Register(name string, info Info, create CreateFunc) {
	if _, ok := registry[name]; ok {
		panic("module: duplicate registration of " + name)
	}
	registry[name] = Entry{Name: name, Info: info, Create: create}
}

// Lookup returns the registered module type called name.
func Lookup(name string) (Entry, bool) {
	e, ok := registry[name]
	return e, ok
}

// Names returns the registered module names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create builds a module of the named type. Nothing is registered with the
// host until the returned module is loaded.
func Create(impl Impl, name, argument string) (*Module, error) {
	e, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, name)
	}
	m, err := e.Create(impl, argument)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	return m, nil
}
