package model

import (
	"context"
	"encoding/json"

	"shopifyapi/pkg/shopify/api"
)

// Metafield is a namespaced key/value attached to an owner record.
type Metafield struct{ *Record }

var Metafields = NewKind(api.KindMetafield, func(r *Record) *Metafield {
	r.ownerScope = metafieldOwner
	return &Metafield{Record: r}
})

// metafieldOwner routes lifecycle calls through owner_resource/owner_id
// when both are set.
func metafieldOwner(r *Record) (string, api.ID, bool) {
	owner := r.String("owner_resource")
	id, ok := api.IDOf(r.data["owner_id"])
	if owner == "" || !ok {
		return "", "", false
	}
	d, found := r.reg.Descriptor(owner)
	if !found {
		return "", "", false
	}
	return d.Collection, id, true
}

func (m *Metafield) Key() string { return m.String("key") }

func (m *Metafield) Namespace() string { return m.String("namespace") }

func (m *Metafield) Value() any { return m.GetOriginal("value") }

func (m *Metafield) ValueType() string { return m.String("value_type") }

func (m *Metafield) Description() string { return m.String("description") }

func (m *Metafield) OwnerResource() string { return m.String("owner_resource") }

func (m *Metafield) OwnerID() api.ID {
	id, _ := api.IDOf(m.GetOriginal("owner_id"))
	return id
}

// SetValue stores v with the value_type Shopify expects for it.
func (m *Metafield) SetValue(v any) *Metafield {
	for k, val := range normalizeMetafieldValue(map[string]any{"value": v}) {
		m.SetOriginal(k, val)
	}
	return m
}

// Owner loads the record the metafield belongs to; nil when it names no
// known owner.
func (m *Metafield) Owner(ctx context.Context) (*Record, error) {
	owner := m.OwnerResource()
	id := m.OwnerID()
	if owner == "" || id.IsZero() {
		return nil, nil
	}
	if _, ok := m.reg.Descriptor(owner); !ok {
		return nil, nil
	}
	return Records(owner).Find(ctx, m.reg, id)
}

// MetafieldSet is the metafields of one owner, keyed by key and namespace.
type MetafieldSet = KeyedRelation[*Metafield]

// MetafieldOwner is implemented by kinds that carry metafields.
type MetafieldOwner interface {
	Model
	Metafields() MetafieldSet
}

var metafieldSystemFields = map[string]bool{
	"id":             true,
	"owner_id":       true,
	"owner_resource": true,
	"created_at":     true,
	"updated_at":     true,
}

func metafieldsOf(owner Model) MetafieldSet {
	return MetafieldSet{
		Relation: NewRelation(owner, Metafields),
		match: func(r *Record, key, namespace string) bool {
			return r.String("key") == key && r.String("namespace") == namespace
		},
		prepare: func(key, namespace string, attrs map[string]any) map[string]any {
			out := map[string]any{"key": key, "namespace": namespace}
			for k, v := range attrs {
				out[k] = v
			}
			return normalizeMetafieldValue(out)
		},
		system: metafieldSystemFields,
	}
}

// normalizeMetafieldValue fills value and value_type: a missing value
// becomes the JSON text null, values that are neither integers nor strings
// are JSON encoded, and value_type defaults to integer or string.
func normalizeMetafieldValue(attrs map[string]any) map[string]any {
	v, ok := attrs["value"]
	switch {
	case !ok || v == nil:
		attrs["value"] = "null"
		attrs["value_type"] = "string"
	case !isInteger(v) && !isString(v):
		b, err := json.Marshal(v)
		if err != nil {
			b = nil
		}
		attrs["value"] = string(b)
		attrs["value_type"] = "string"
	}
	if _, ok := attrs["value_type"]; !ok {
		if isInteger(attrs["value"]) {
			attrs["value_type"] = "integer"
		} else {
			attrs["value_type"] = "string"
		}
	}
	return attrs
}

func isInteger(v any) bool {
	switch x := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case json.Number:
		_, err := x.Int64()
		return err == nil
	}
	return false
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

// MetafieldsOf returns the metafields of the record of kind with id
// without loading it. kind must be one of the metafield owners.
func MetafieldsOf(reg *api.Registry, kind string, id api.ID) (MetafieldSet, error) {
	d, ok := reg.Descriptor(kind)
	if !ok {
		return MetafieldSet{}, &api.UnknownKindError{Name: kind}
	}
	data := map[string]any{"id": id.String()}
	switch d.Kind {
	case api.KindProduct:
		return ownerSet(Products, reg, data)
	case api.KindVariant:
		return ownerSet(Variants, reg, data)
	case api.KindOrder:
		return ownerSet(Orders, reg, data)
	case api.KindCustomCollection:
		return ownerSet(CustomCollections, reg, data)
	}
	return MetafieldSet{}, &api.OperationError{
		Op:     "list metafields of",
		Kind:   d.Kind,
		Reason: "kind has no metafields",
		Err:    api.ErrUnsupportedOperation,
	}
}

func ownerSet[T MetafieldOwner](k Kind[T], reg *api.Registry, data map[string]any) (MetafieldSet, error) {
	t, err := k.From(reg, data)
	if err != nil {
		return MetafieldSet{}, err
	}
	return t.Metafields(), nil
}
