package pipeline

import (
	"sort"

	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/waveform"
)

// Args carries resolved inputs and fixed parameters for one function
// invocation, keyed by the function's formal parameter names.
type Args map[string]waveform.Value

// Func is a pure transformation over waveform data. A Func never touches
// a record itself; the engine resolves its inputs and stores its output.
// Given the same Args it must return the same Value.
type Func func(args Args) (waveform.Value, error)

type entry struct {
	fn     Func
	params []string
}

// Registry maps function names to transformation functions and their
// declared formal parameter names. It is immutable once a batch starts
// and safe to share across workers read-only.
type Registry struct {
	funcs map[string]entry
}

// NewRegistry creates an empty function registry.
func NewRegistry() *Registry {
	return &Registry{funcs: map[string]entry{}}
}

// Register adds a named function with its formal parameter names.
func (r *Registry) Register(name string, fn Func, params []string) error {
	if _, ok := r.funcs[name]; ok {
		return DuplicateRegistrationError{Name: name}
	}
	r.funcs[name] = entry{fn: fn, params: append([]string(nil), params...)}
	return nil
}

// MustRegister is Register for startup population, where a duplicate
// name is a programming error.
func (r *Registry) MustRegister(name string, fn Func, params []string) {
	if err := r.Register(name, fn, params); err != nil {
		panic(err)
	}
}

// Resolve returns the function and its declared parameter names.
func (r *Registry) Resolve(name string) (Func, []string, error) {
	e, ok := r.funcs[name]
	if !ok {
		return nil, nil, UnknownFunctionError{Name: name}
	}
	return e.fn, e.params, nil
}

// Names returns the sorted registered function names.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
