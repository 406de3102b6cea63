// Package model implements remote-backed records on top of api adapters:
// hydration, attribute access, dirty tracking, the save and remove
// lifecycle and sub-resources owned by a parent record.
package model

import (
	"context"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"shopifyapi/pkg/shopify/api"
)

// Record is one remote record of a fixed kind. It is not safe for
// concurrent use.
type Record struct {
	kind   string
	reg    *api.Registry
	api    *api.Adapter
	strict bool

	id       api.ID
	data     map[string]any
	original map[string]any
	removed  bool

	loadParams url.Values
	hooks      map[Hook][]HookFunc

	// scope routes lifecycle calls through a parent. ownerScope derives one
	// from the record's own attributes when no explicit scope was bound.
	scope      *parentScope
	ownerScope func(r *Record) (collection string, id api.ID, ok bool)
}

type parentScope struct {
	collection string
	id         api.ID
}

// Model is implemented by *Record and every kind embedding it.
type Model interface {
	Base() *Record
}

func newRecord(reg *api.Registry, kind string) (*Record, error) {
	a, err := reg.Resolve(kind)
	if err != nil {
		return nil, err
	}
	return &Record{
		kind:   a.Kind(),
		reg:    reg,
		api:    a,
		strict: reg.Strict(),
		data:   map[string]any{},
	}, nil
}

// Base returns r itself.
func (r *Record) Base() *Record { return r }

// Kind returns the singular kind name, e.g. "order".
func (r *Record) Kind() string { return r.kind }

// ID returns the identity, zero for a record not yet created.
func (r *Record) ID() api.ID { return r.id }

// IsNew reports whether the record has no identity.
func (r *Record) IsNew() bool { return r.id.IsZero() }

// Removed reports whether Remove succeeded on this record.
func (r *Record) Removed() bool { return r.removed }

// Fields returns the declared field names of the kind.
func (r *Record) Fields() []string { return r.api.Fields() }

// Adapter returns the adapter the record is bound to.
func (r *Record) Adapter() *api.Adapter { return r.api }

// Registry returns the registry the record was built from.
func (r *Record) Registry() *api.Registry { return r.reg }

// Data returns a deep copy of the attributes.
func (r *Record) Data() map[string]any { return api.CloneMap(r.data) }

// SetData replaces the attributes wholesale with a copy of data and
// re-derives the identity from data["id"], clearing it when absent.
// Unsaved edits are lost.
func (r *Record) SetData(data map[string]any) *Record {
	r.data = api.CloneMap(data)
	if r.data == nil {
		r.data = map[string]any{}
	}
	r.id, _ = api.IDOf(data["id"])
	return r
}

// Scope binds the record to a parent so create, update and delete go
// through the nested path.
func (r *Record) Scope(collection string, id api.ID) *Record {
	r.scope = &parentScope{collection: collection, id: id}
	return r
}

// Refresh re-fetches the record and replaces its attributes with the
// unwrapped response. The identity is kept when the response omits id.
func (r *Record) Refresh(ctx context.Context) error {
	if err := r.usable("refresh"); err != nil {
		return err
	}
	if r.IsNew() && !r.api.Descriptor().Singleton() {
		return &api.OperationError{Op: "refresh", Kind: r.kind, Reason: "record has no id", Err: api.ErrUnsupportedOperation}
	}
	if err := r.run(ctx, PreRefresh); err != nil {
		return err
	}
	resp, err := r.api.Show(ctx, r.id, r.loadParams)
	if err != nil {
		return err
	}
	prev := r.id
	r.SetData(api.UnwrapObject(resp, r.api.Descriptor().Wrap))
	if r.id.IsZero() {
		r.id = prev
	}
	r.snapshot()
	return r.run(ctx, PostRefresh)
}

// Save creates the record when it has no identity and updates it
// otherwise, then refreshes it. When a step before the trailing refresh
// fails, attributes and identity are restored to their values at the call.
func (r *Record) Save(ctx context.Context) error {
	if err := r.usable("save"); err != nil {
		return err
	}
	creating := r.IsNew()
	op, name, pre, post := api.OpUpdate, "update", PreUpdate, PostUpdate
	if creating {
		op, name, pre, post = api.OpCreate, "create", PreCreate, PostCreate
	}
	a := r.adapterFor()
	if !a.Supports(op) {
		return &api.OperationError{Op: name, Kind: r.kind, Reason: "not supported by the api", Err: api.ErrUnsupportedOperation}
	}

	savedID, savedData := r.id, api.CloneMap(r.data)
	fail := func(err error) error {
		r.id, r.data = savedID, savedData
		return err
	}

	if err := r.run(ctx, PreSave, pre); err != nil {
		return fail(err)
	}
	var resp any
	var err error
	if creating {
		resp, err = a.Create(ctx, api.CloneMap(r.data))
	} else {
		resp, err = a.Update(ctx, r.id, api.CloneMap(r.data))
	}
	if err != nil {
		return fail(err)
	}

	if data := api.UnwrapObject(resp, r.api.Descriptor().Wrap); data != nil {
		id := r.id
		r.SetData(data)
		if r.id.IsZero() {
			r.id = id
		}
	}
	if creating && r.IsNew() {
		return fail(&api.OperationError{Op: name, Kind: r.kind, Reason: "response carried no id", Err: api.ErrUnsupportedOperation})
	}
	if err := r.run(ctx, post, PostSave); err != nil {
		return fail(err)
	}
	return r.Refresh(ctx)
}

// Remove deletes the remote record. Attributes are kept; the record
// rejects further lifecycle calls afterwards.
func (r *Record) Remove(ctx context.Context) error {
	if err := r.usable("remove"); err != nil {
		return err
	}
	if r.IsNew() {
		return &api.OperationError{Op: "remove", Kind: r.kind, Reason: "record has no id", Err: api.ErrUnsupportedOperation}
	}
	a := r.adapterFor()
	if !a.Supports(api.OpDelete) {
		return &api.OperationError{Op: "remove", Kind: r.kind, Reason: "not supported by the api", Err: api.ErrUnsupportedOperation}
	}
	if err := r.run(ctx, PreRemove); err != nil {
		return err
	}
	if _, err := a.Delete(ctx, r.id, nil); err != nil {
		return err
	}
	r.removed = true
	return r.run(ctx, PostRemove)
}

// Fetch reads one declared field straight from the api without touching
// the attributes.
func (r *Record) Fetch(ctx context.Context, field string) (any, error) {
	if err := r.usable("fetch"); err != nil {
		return nil, err
	}
	return r.api.GetField(ctx, r.id, api.SnakeCase(field))
}

// Get reads an attribute. name may be snake or camel case. An absent key
// yields nil, or a FieldError wrapping api.ErrNotFound in strict mode.
func (r *Record) Get(name string) (any, error) {
	key := attrKey(name)
	v, ok := r.data[key]
	if !ok && r.strict {
		return nil, &api.FieldError{Kind: r.kind, Field: key, Err: api.ErrNotFound}
	}
	return v, nil
}

// Set writes an attribute and returns r for chaining.
func (r *Record) Set(name string, value any) *Record {
	r.data[attrKey(name)] = value
	return r
}

// Has reports whether the attribute is present.
func (r *Record) Has(name string) bool {
	_, ok := r.data[attrKey(name)]
	return ok
}

// Unset removes an attribute.
func (r *Record) Unset(name string) *Record {
	delete(r.data, attrKey(name))
	return r
}

// GetOriginal reads attributes[name] as stored; absent keys yield nil in
// both modes.
func (r *Record) GetOriginal(name string) any { return r.data[name] }

// SetOriginal writes attributes[name] as given.
func (r *Record) SetOriginal(name string, value any) *Record {
	r.data[name] = value
	return r
}

// Dirty reports whether the attributes differ from the last hydration or
// persistence.
func (r *Record) Dirty() bool {
	if len(r.data) == 0 && len(r.original) == 0 {
		return false
	}
	return !reflect.DeepEqual(r.data, r.original)
}

// Changed lists the attribute keys that differ from the last hydration or
// persistence, sorted.
func (r *Record) Changed() []string {
	var out []string
	for k, v := range r.data {
		if ov, ok := r.original[k]; !ok || !reflect.DeepEqual(v, ov) {
			out = append(out, k)
		}
	}
	for k := range r.original {
		if _, ok := r.data[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (r *Record) snapshot() { r.original = api.CloneMap(r.data) }

func (r *Record) usable(op string) error {
	if r.removed {
		return &api.OperationError{Op: op, Kind: r.kind, Reason: "record was removed", Err: api.ErrUnsupportedOperation}
	}
	return nil
}

// adapterFor returns the adapter lifecycle calls go through: scoped to the
// bound parent, to the owner derived from the attributes, or the base one.
func (r *Record) adapterFor() *api.Adapter {
	if r.scope != nil {
		return r.api.For(r.scope.collection, r.scope.id)
	}
	if r.ownerScope != nil {
		if collection, id, ok := r.ownerScope(r); ok {
			return r.api.For(collection, id)
		}
	}
	return r.api
}

func attrKey(name string) string {
	if strings.ContainsFunc(name, func(c rune) bool { return c >= 'A' && c <= 'Z' }) {
		return api.SnakeCase(name)
	}
	return name
}
