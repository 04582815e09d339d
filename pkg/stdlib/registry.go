// Package stdlib provides the BigLisp supplementary builtin registry.
package stdlib

import (
	"sort"

	"github.com/thomasrohde/biglisp/go/pkg/evaluator"
)

// Fn represents a builtin applied to already-evaluated arguments.
type Fn struct {
	Name    string
	Execute func(args []evaluator.Value) (evaluator.Value, error)
}

// Registry holds registered builtins.
type Registry struct {
	fns map[string]*Fn
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		fns: make(map[string]*Fn),
	}
}

// Register adds a builtin to the registry. Core form names are ignored
// because the evaluator never dispatches them to builtins.
func (r *Registry) Register(fn Fn) {
	if evaluator.IsCoreForm(fn.Name) {
		return
	}
	r.fns[fn.Name] = &fn
}

// Get retrieves a builtin by name.
func (r *Registry) Get(name string) *Fn {
	return r.fns[name]
}

// All returns all registered builtins.
func (r *Registry) All() map[string]*Fn {
	return r.fns
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtins converts the registry into the map expected by evaluator.ExecOptions.
func (r *Registry) Builtins() map[string]*evaluator.Builtin {
	out := make(map[string]*evaluator.Builtin, len(r.fns))
	for name, fn := range r.fns {
		out[name] = &evaluator.Builtin{Name: fn.Name, Execute: fn.Execute}
	}
	return out
}
