package method

import (
	"errors"
	"fmt"
	"sort"
)

// Registry validation errors.
var (
	ErrDuplicateMethod = errors.New("method already registered")
	ErrFrozen          = errors.New("registry is frozen")
	ErrNoCatchAll      = errors.New("last-ranked method must have no precondition")
	ErrEmpty           = errors.New("registry has no methods")
)

// Registry is the ordered set of installation methods. Methods register at
// process start; Freeze validates the set and makes it immutable.
type Registry struct {
	methods []Method
	frozen  bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a method. Registration order breaks rank ties.
func (r *Registry) Register(m Method) error {
	if r.frozen {
		return ErrFrozen
	}
	for _, existing := range r.methods {
		if existing.Name() == m.Name() {
			return fmt.Errorf("%w: %s", ErrDuplicateMethod, m.Name())
		}
	}
	r.methods = append(r.methods, m)
	return nil
}

// Freeze validates the registry and prevents further registration. The
// highest-ranked method must be a catch-all so a run can never exhaust the
// sequence without a terminal outcome.
func (r *Registry) Freeze() error {
	if len(r.methods) == 0 {
		return ErrEmpty
	}
	ordered := r.Methods()
	if !ordered[len(ordered)-1].CatchAll() {
		return ErrNoCatchAll
	}
	r.frozen = true
	return nil
}

// Methods returns the methods sorted by rank, ties broken by registration
// order. The returned slice is a copy.
func (r *Registry) Methods() []Method {
	out := make([]Method, len(r.methods))
	copy(out, r.methods)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rank() < out[j].Rank()
	})
	return out
}

// Lookup returns the method with the given name.
func (r *Registry) Lookup(name string) (Method, bool) {
	for _, m := range r.methods {
		if m.Name() == name {
			return m, true
		}
	}
	return Method{}, false
}

// Len returns the number of registered methods.
func (r *Registry) Len() int {
	return len(r.methods)
}
