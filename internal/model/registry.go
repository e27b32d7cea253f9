package model

import (
	"fmt"
	"sort"

	"github.com/kmadler/bayesode/internal/dyn"
)

var factories = map[string]func() dyn.System{
	"pendulum":   func() dyn.System { return NewPendulum() },
	"oscillator": func() dyn.System { return NewOscillator() },
}

// Get returns a model by name.
func Get(name string) (dyn.System, error) {
	fn, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(), nil
}

// List returns the registered model names, sorted.
func List() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
