package integrators

import (
	"fmt"
	"sort"

	"github.com/kmadler/bayesode/internal/dyn"
)

var factories = map[string]func() dyn.Integrator{
	"rk4":  func() dyn.Integrator { return NewRK4() },
	"rk45": func() dyn.Integrator { return NewRK45() },
}

// Get returns an integrator by name.
func Get(name string) (dyn.Integrator, error) {
	fn, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

// List returns the registered integrator names, sorted.
func List() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
