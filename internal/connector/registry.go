package connector

import (
	"fmt"
	"iter"
	"slices"

	"github.com/crimson-sun/velocity/internal/model"
)

// Constructor is a function that creates a new Connector instance.
type Constructor func() Connector

var registry = map[string]Constructor{}

// Register adds a connector constructor under the given provider name.
func Register(name string, ctor Constructor) {
	registry[name] = ctor
}

// Get returns the connector constructor for the given provider name.
func Get(name string) (Constructor, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown connector provider: %s", name)
	}
	return ctor, nil
}

// Providers returns the names of all registered connector providers, sorted.
func Providers() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Fail returns a sequence that yields err once. Connectors use it for
// errors detected before the first document is read.
func Fail(err error) iter.Seq2[model.RawAction, error] {
	return func(yield func(model.RawAction, error) bool) {
		yield(nil, err)
	}
}
