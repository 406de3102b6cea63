package api

import (
	"context"
	"maps"
	"net/http"
	"net/url"
)

// Adapter performs the REST calls of one resource kind. An Adapter is
// immutable: For returns a scoped copy, so one value can be shared between
// goroutines.
type Adapter struct {
	desc      *Descriptor
	transport Transport

	parent   string
	parentID ID
	scoped   bool
}

// NewAdapter binds d to t.
func NewAdapter(d *Descriptor, t Transport) *Adapter {
	return &Adapter{desc: d, transport: t}
}

func (a *Adapter) Kind() string { return a.desc.Kind }

func (a *Adapter) Descriptor() *Descriptor { return a.desc }

// Fields returns a copy of the declared field list.
func (a *Adapter) Fields() []string { return append([]string(nil), a.desc.Fields...) }

func (a *Adapter) Supports(op Op) bool { return a.desc.Supports(op) }

// For returns a view of a nested under one parent record, e.g.
// metafields.For("products", "5"). The receiver is not modified.
func (a *Adapter) For(parentCollection string, parentID ID) *Adapter {
	v := *a
	v.parent = parentCollection
	v.parentID = parentID
	v.scoped = true
	return &v
}

// Product, Variant, Order and CustomCollection are shorthands for For.
func (a *Adapter) Product(id ID) *Adapter { return a.For("products", id) }

func (a *Adapter) Variant(id ID) *Adapter { return a.For("variants", id) }

func (a *Adapter) Order(id ID) *Adapter { return a.For("orders", id) }

func (a *Adapter) CustomCollection(id ID) *Adapter { return a.For("custom_collections", id) }

// Unscoped returns the base adapter of a scoped view.
func (a *Adapter) Unscoped() *Adapter {
	v := *a
	v.parent, v.parentID, v.scoped = "", "", false
	return &v
}

// Scope returns the parent the view is bound to.
func (a *Adapter) Scope() (collection string, id ID, ok bool) {
	return a.parent, a.parentID, a.scoped
}

// Path returns the member path for id, honouring the scope when the kind
// routes member calls through its parent.
func (a *Adapter) Path(id ID) string {
	p := ExpandPath(a.desc.Path, id)
	if a.scoped && a.desc.ScopeMembers {
		p = NestPath(p, a.parent, a.parentID)
	}
	return p
}

func (a *Adapter) Show(ctx context.Context, id ID, params url.Values) (any, error) {
	if err := a.check(OpShow); err != nil {
		return nil, err
	}
	path, err := a.memberPath("show", id)
	if err != nil {
		return nil, err
	}
	return a.do(ctx, http.MethodGet, path, params, nil)
}

func (a *Adapter) All(ctx context.Context, params url.Values) (any, error) {
	if err := a.check(OpList); err != nil {
		return nil, err
	}
	path, err := a.collectionPath("list", CollectionPath(a.desc.Path), nil)
	if err != nil {
		return nil, err
	}
	return a.do(ctx, http.MethodGet, path, params, nil)
}

// Count returns the count reported by the count endpoint, or 0 when the
// response carries none.
func (a *Adapter) Count(ctx context.Context, params url.Values) (int, error) {
	if err := a.check(OpCount); err != nil {
		return 0, err
	}
	path, err := a.collectionPath("count", CountPath(a.desc.Path), nil)
	if err != nil {
		return 0, err
	}
	resp, err := a.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return 0, err
	}
	m, ok := resp.(map[string]any)
	if !ok {
		return 0, nil
	}
	return toInt(m["count"]), nil
}

func (a *Adapter) Create(ctx context.Context, attrs map[string]any) (any, error) {
	if err := a.check(OpCreate); err != nil {
		return nil, err
	}
	path, err := a.collectionPath("create", CollectionPath(a.desc.Path), attrs)
	if err != nil {
		return nil, err
	}
	return a.do(ctx, http.MethodPost, path, nil, map[string]any{a.desc.Wrap: attrs})
}

func (a *Adapter) Update(ctx context.Context, id ID, attrs map[string]any) (any, error) {
	if err := a.check(OpUpdate); err != nil {
		return nil, err
	}
	path, err := a.memberPath("update", id)
	if err != nil {
		return nil, err
	}
	body := maps.Clone(attrs)
	if body == nil {
		body = map[string]any{}
	}
	for _, f := range a.desc.IgnoreOnUpdate {
		delete(body, f)
	}
	return a.do(ctx, http.MethodPut, path, nil, map[string]any{a.desc.Wrap: body})
}

func (a *Adapter) Delete(ctx context.Context, id ID, params url.Values) (any, error) {
	if err := a.check(OpDelete); err != nil {
		return nil, err
	}
	path, err := a.memberPath("delete", id)
	if err != nil {
		return nil, err
	}
	return a.do(ctx, http.MethodDelete, path, params, nil)
}

// GetField fetches one declared field of a record. When the unwrapped
// payload is a single-key object holding that field its value is returned
// directly.
func (a *Adapter) GetField(ctx context.Context, id ID, field string) (any, error) {
	if !a.desc.HasField(field) {
		return nil, &FieldError{Kind: a.desc.Kind, Field: field, Err: ErrInvalidField}
	}
	resp, err := a.Show(ctx, id, url.Values{"fields": {field}})
	if err != nil {
		return nil, err
	}
	v := Unwrap(resp, a.desc.Wrap)
	if m, ok := v.(map[string]any); ok && len(m) == 1 {
		if fv, ok := m[field]; ok {
			return fv, nil
		}
	}
	return v, nil
}

// Action POSTs body to a member action endpoint such as
// /admin/discounts/{id}/enable.json.
func (a *Adapter) Action(ctx context.Context, id ID, action string, body any) (any, error) {
	path, err := a.memberPath(action, id)
	if err != nil {
		return nil, err
	}
	return a.do(ctx, http.MethodPost, ActionPath(path, action), nil, body)
}

func (a *Adapter) check(op Op) error {
	if !a.desc.Supports(op) {
		return unsupported(op.String(), a.desc.Kind, "not supported by the api")
	}
	return nil
}

func (a *Adapter) memberPath(op string, id ID) (string, error) {
	if id.IsZero() && !a.desc.Singleton() {
		return "", unsupported(op, a.desc.Kind, "record has no id")
	}
	if a.scoped && a.desc.ScopeMembers {
		if err := a.checkScope(op); err != nil {
			return "", err
		}
	}
	return a.Path(id), nil
}

func (a *Adapter) collectionPath(op, base string, attrs map[string]any) (string, error) {
	if a.scoped {
		if err := a.checkScope(op); err != nil {
			return "", err
		}
		return NestPath(base, a.parent, a.parentID), nil
	}
	if !a.desc.ScopeRequired {
		return base, nil
	}
	if a.desc.ScopeField != "" && len(a.desc.Parents) > 0 {
		if pid, ok := IDOf(attrs[a.desc.ScopeField]); ok {
			return NestPath(base, a.desc.Parents[0], pid), nil
		}
	}
	return "", missingScope(op, a.desc.Kind, "no parent bound")
}

func (a *Adapter) checkScope(op string) error {
	if !a.desc.allowsParent(a.parent) {
		return unsupported(op, a.desc.Kind, "cannot be nested under "+a.parent)
	}
	if a.parentID.IsZero() {
		return missingScope(op, a.desc.Kind, "parent "+a.parent+" has no id")
	}
	return nil
}

func (a *Adapter) do(ctx context.Context, method, path string, query url.Values, body any) (any, error) {
	return a.transport.Do(ctx, Request{Method: method, Path: path, Query: query, Body: body})
}
