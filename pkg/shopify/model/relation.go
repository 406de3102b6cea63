package model

import (
	"context"
	"encoding/json"
	"net/url"
	"reflect"

	"shopifyapi/pkg/shopify/api"
)

// Relation is the sub-resources of one kind nested under a parent record,
// e.g. the variants of a product. Every call needs the parent's identity and
// fails with an OperationError wrapping api.ErrMissingScope otherwise.
type Relation[T Model] struct {
	parent *Record
	child  Kind[T]
}

// NewRelation relates child records to parent.
func NewRelation[T Model](parent Model, child Kind[T]) Relation[T] {
	return Relation[T]{parent: parent.Base(), child: child}
}

func (rel Relation[T]) view(op string) (*api.Adapter, *parentScope, error) {
	a, err := rel.parent.reg.Resolve(rel.child.Name)
	if err != nil {
		return nil, nil, err
	}
	if rel.parent.IsNew() {
		return nil, nil, &api.OperationError{
			Op:     op,
			Kind:   a.Kind(),
			Reason: "parent " + rel.parent.kind + " has no id",
			Err:    api.ErrMissingScope,
		}
	}
	scope := &parentScope{collection: rel.parent.api.Descriptor().Collection, id: rel.parent.id}
	return a.For(scope.collection, scope.id), scope, nil
}

// List fetches every child of the parent with one call.
func (rel Relation[T]) List(ctx context.Context, params url.Values) ([]T, error) {
	a, scope, err := rel.view("list")
	if err != nil {
		return nil, err
	}
	resp, err := a.All(ctx, params)
	if err != nil {
		return nil, err
	}
	return rel.child.seed(rel.parent.reg, api.UnwrapList(resp, a.Descriptor().WrapMany), scope)
}

// Count returns the number of children.
func (rel Relation[T]) Count(ctx context.Context, params url.Values) (int, error) {
	a, _, err := rel.view("count")
	if err != nil {
		return 0, err
	}
	return a.Count(ctx, params)
}

// Create posts a new child and returns it seeded from the response.
func (rel Relation[T]) Create(ctx context.Context, attrs map[string]any) (T, error) {
	var zero T
	a, scope, err := rel.view("create")
	if err != nil {
		return zero, err
	}
	resp, err := a.Create(ctx, attrs)
	if err != nil {
		return zero, err
	}
	t, err := rel.child.From(rel.parent.reg, api.UnwrapObject(resp, a.Descriptor().Wrap))
	if err != nil {
		return zero, err
	}
	t.Base().scope = scope
	return t, nil
}

// New returns an unsaved child bound to the parent; Save creates it under
// the parent's path.
func (rel Relation[T]) New() (T, error) {
	var zero T
	_, scope, err := rel.view("create")
	if err != nil {
		return zero, err
	}
	t, err := rel.child.New(rel.parent.reg)
	if err != nil {
		return zero, err
	}
	t.Base().scope = scope
	return t, nil
}

// KeyedRelation adds lookups by a natural key made of a key and a
// discriminator, such as a metafield's key and namespace. Lookups list the
// children and scan them; there is no server-side filtering.
type KeyedRelation[T Model] struct {
	Relation[T]

	match   func(r *Record, key, discriminator string) bool
	prepare func(key, discriminator string, attrs map[string]any) map[string]any
	// system names attributes Update never copies.
	system map[string]bool
}

// Find returns the child matching key and discriminator, or the zero T
// and false when none does.
func (rel KeyedRelation[T]) Find(ctx context.Context, key, discriminator string) (T, bool, error) {
	var zero T
	children, err := rel.List(ctx, nil)
	if err != nil {
		return zero, false, err
	}
	for _, c := range children {
		if rel.match(c.Base(), key, discriminator) {
			return c, true, nil
		}
	}
	return zero, false, nil
}

// Exists reports whether a matching child exists.
func (rel KeyedRelation[T]) Exists(ctx context.Context, key, discriminator string) (bool, error) {
	_, ok, err := rel.Find(ctx, key, discriminator)
	return ok, err
}

// Create normalizes attrs for key and discriminator and posts the child.
func (rel KeyedRelation[T]) Create(ctx context.Context, key, discriminator string, attrs map[string]any) (T, error) {
	return rel.Relation.Create(ctx, rel.prepare(key, discriminator, attrs))
}

// Update copies attrs onto the matching child, skipping system-managed
// attributes, and saves it. It fails when no child matches.
func (rel KeyedRelation[T]) Update(ctx context.Context, key, discriminator string, attrs map[string]any) (T, error) {
	var zero T
	c, ok, err := rel.Find(ctx, key, discriminator)
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, rel.missing("update", key, discriminator)
	}
	return c, rel.apply(ctx, c, attrs)
}

// Upsert updates the matching child or creates one.
func (rel KeyedRelation[T]) Upsert(ctx context.Context, key, discriminator string, attrs map[string]any) (T, error) {
	c, ok, err := rel.Find(ctx, key, discriminator)
	if err != nil {
		var zero T
		return zero, err
	}
	if !ok {
		return rel.Create(ctx, key, discriminator, attrs)
	}
	return c, rel.apply(ctx, c, attrs)
}

// UpsertOrDelete deletes the matching child when attrs carries an empty
// value and upserts otherwise. The bool reports whether anything changed:
// it is false only when the value was empty and no child matched.
func (rel KeyedRelation[T]) UpsertOrDelete(ctx context.Context, key, discriminator string, attrs map[string]any) (T, bool, error) {
	var zero T
	if !isEmptyValue(attrs["value"]) {
		c, err := rel.Upsert(ctx, key, discriminator, attrs)
		if err != nil {
			return zero, false, err
		}
		return c, true, nil
	}
	c, ok, err := rel.Find(ctx, key, discriminator)
	if err != nil || !ok {
		return zero, false, err
	}
	if err := c.Base().Remove(ctx); err != nil {
		return zero, false, err
	}
	return zero, true, nil
}

// Delete removes the matching child. It fails when no child matches.
func (rel KeyedRelation[T]) Delete(ctx context.Context, key, discriminator string) error {
	c, ok, err := rel.Find(ctx, key, discriminator)
	if err != nil {
		return err
	}
	if !ok {
		return rel.missing("delete", key, discriminator)
	}
	return c.Base().Remove(ctx)
}

func (rel KeyedRelation[T]) apply(ctx context.Context, c T, attrs map[string]any) error {
	r := c.Base()
	for _, f := range r.Fields() {
		if rel.system[f] {
			continue
		}
		if v, ok := attrs[f]; ok && v != nil {
			r.SetOriginal(f, v)
		}
	}
	return r.Save(ctx)
}

func (rel KeyedRelation[T]) missing(op, key, discriminator string) error {
	return &api.OperationError{
		Op:     op,
		Kind:   rel.child.Name,
		Reason: discriminator + "." + key + " does not exist",
		Err:    api.ErrUnsupportedOperation,
	}
}

// isEmptyValue reports the values treated as "no value": nil, "", "0",
// false, numeric zero and empty collections.
func isEmptyValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == "" || x == "0"
	case bool:
		return !x
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 0
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	}
	return false
}
