package model

import (
	"context"
	"net/url"

	"shopifyapi/pkg/shopify/api"
)

// Kind constructs records of one kind as T. The zero-arg constructors of
// each concrete kind are package variables such as Products and Orders.
type Kind[T Model] struct {
	// Name is the registry name of the kind.
	Name string
	// LoadParams are sent with every refresh.
	LoadParams url.Values

	wrap func(r *Record) T
}

// NewKind describes a kind whose records are built by wrap. wrap receives a
// bound record and may register hooks on it.
func NewKind[T Model](name string, wrap func(r *Record) T) Kind[T] {
	return Kind[T]{Name: name, wrap: wrap}
}

// Records builds plain records of any registered kind.
func Records(name string) Kind[*Record] {
	return NewKind(name, func(r *Record) *Record { return r })
}

func (k Kind[T]) bind(reg *api.Registry) (T, *Record, error) {
	var zero T
	r, err := newRecord(reg, k.Name)
	if err != nil {
		return zero, nil, err
	}
	r.loadParams = k.LoadParams
	return k.wrap(r), r, nil
}

// New returns an empty record with no identity.
func (k Kind[T]) New(reg *api.Registry) (T, error) {
	t, _, err := k.bind(reg)
	return t, err
}

// Find hydrates the record with the given id through one show call.
func (k Kind[T]) Find(ctx context.Context, reg *api.Registry, id api.ID) (T, error) {
	var zero T
	t, r, err := k.bind(reg)
	if err != nil {
		return zero, err
	}
	if id.IsZero() {
		return t, nil
	}
	r.id = id
	if err := r.Refresh(ctx); err != nil {
		return zero, err
	}
	return t, nil
}

// From seeds a record from data without any network call. The identity
// comes from data["id"].
func (k Kind[T]) From(reg *api.Registry, data map[string]any) (T, error) {
	var zero T
	t, r, err := k.bind(reg)
	if err != nil {
		return zero, err
	}
	r.SetData(data)
	r.snapshot()
	return t, nil
}

// All lists records through one call and seeds each element.
func (k Kind[T]) All(ctx context.Context, reg *api.Registry, params url.Values) ([]T, error) {
	a, err := reg.Resolve(k.Name)
	if err != nil {
		return nil, err
	}
	resp, err := a.All(ctx, params)
	if err != nil {
		return nil, err
	}
	return k.seed(reg, api.UnwrapList(resp, a.Descriptor().WrapMany), nil)
}

// Count returns the number of records matching params.
func (k Kind[T]) Count(ctx context.Context, reg *api.Registry, params url.Values) (int, error) {
	a, err := reg.Resolve(k.Name)
	if err != nil {
		return 0, err
	}
	return a.Count(ctx, params)
}

func (k Kind[T]) seed(reg *api.Registry, items []map[string]any, scope *parentScope) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, item := range items {
		t, err := k.From(reg, item)
		if err != nil {
			return nil, err
		}
		t.Base().scope = scope
		out = append(out, t)
	}
	return out, nil
}
