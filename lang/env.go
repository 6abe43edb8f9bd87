package lang

// Env implements a lexical environment chain.
type Env struct {
	parent *Env
	values map[string]Value
}

// NewEnv creates an environment with optional parent.
func NewEnv(parent *Env) *Env {
	return &Env{
		parent: parent,
		values: make(map[string]Value),
	}
}

// Set binds name to value in the current frame, shadowing any outer binding.
func (e *Env) Set(name string, val Value) {
	e.values[name] = val
}

// Get retrieves a binding, searching parents if necessary.
func (e *Env) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if val, ok := env.values[name]; ok {
			return val, true
		}
	}
	return Value{}, false
}

// Resolve returns the innermost frame that binds name, or nil.
func (e *Env) Resolve(name string) *Env {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			return env
		}
	}
	return nil
}

// Parent returns the parent environment.
func (e *Env) Parent() *Env {
	return e.parent
}
