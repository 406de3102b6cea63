package api

import (
	"sort"
	"strings"
)

// Registry resolves kind names to adapters bound to one transport. It also
// carries the attribute access mode records created through it use.
type Registry struct {
	transport Transport
	byName    map[string]*Descriptor
	kinds     []string
	strict    bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithStrict makes reads of absent attributes fail with ErrNotFound instead
// of returning nil.
func WithStrict(strict bool) Option {
	return func(r *Registry) { r.strict = strict }
}

// WithDescriptor registers an additional kind, replacing a built-in one with
// the same name.
func WithDescriptor(d *Descriptor) Option {
	return func(r *Registry) { r.register(d) }
}

// NewRegistry returns a registry of the built-in kinds plus any registered
// through options.
func NewRegistry(t Transport, opts ...Option) *Registry {
	r := &Registry{transport: t, byName: map[string]*Descriptor{}}
	for _, d := range Builtin() {
		r.register(d)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) register(d *Descriptor) {
	if _, ok := r.byName[d.Kind]; !ok {
		r.kinds = append(r.kinds, d.Kind)
		sort.Strings(r.kinds)
	}
	r.byName[d.Kind] = d
	if d.Collection != "" {
		r.byName[d.Collection] = d
	}
}

// Resolve returns an adapter for name, which may be the singular or plural
// form in snake or camel case ("product", "Products", "customCollections").
func (r *Registry) Resolve(name string) (*Adapter, error) {
	d, ok := r.Descriptor(name)
	if !ok {
		return nil, &UnknownKindError{Name: name}
	}
	return NewAdapter(d, r.transport), nil
}

// Descriptor looks up the metadata of a kind.
func (r *Registry) Descriptor(name string) (*Descriptor, bool) {
	d, ok := r.byName[SnakeCase(strings.TrimSpace(name))]
	return d, ok
}

// Kinds lists the singular names of all registered kinds, sorted.
func (r *Registry) Kinds() []string { return append([]string(nil), r.kinds...) }

func (r *Registry) Strict() bool { return r.strict }

func (r *Registry) Transport() Transport { return r.transport }
