package schema

// Registry maps message full names to schemas. The first schema registered
// for a name is kept; later registrations return it instead.
type Registry struct {
	byName map[string]*Schema
	order  []string
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Schema)}
}

// Register records s for name unless name is already registered, and
// returns the schema now registered for name.
func (r *Registry) Register(name string, s *Schema) *Schema {
	if prev, ok := r.byName[name]; ok {
		return prev
	}
	r.byName[name] = s
	r.order = append(r.order, name)
	return s
}

func (r *Registry) Lookup(name string) (*Schema, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) Len() int {
	return len(r.order)
}

func (r *Registry) remove(name string) {
	if _, ok := r.byName[name]; !ok {
		return
	}
	delete(r.byName, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
