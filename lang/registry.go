package lang

import (
	"maps"
	"slices"
)

// Builtin is a native function exposed to scripts. Builtins check their
// own arity.
type Builtin func(ev *Evaluator, args []Value) (Value, error)

// Registry is an immutable table of builtin functions.
type Registry struct {
	entries map[string]Value
}

// NewRegistry copies fns into a new registry.
func NewRegistry(fns map[string]Builtin) *Registry {
	entries := make(map[string]Value, len(fns))
	for name, fn := range fns {
		entries[name] = BuiltinValue(name, fn)
	}
	return &Registry{entries: entries}
}

// Lookup returns the builtin bound to name.
func (r *Registry) Lookup(name string) (Value, bool) {
	if r == nil {
		return Value{}, false
	}
	v, ok := r.entries[name]
	return v, ok
}

// Has reports whether name is a builtin.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns the builtin names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(r.entries))
}
