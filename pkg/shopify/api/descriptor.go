package api

import (
	"net/url"
	"slices"
	"strings"
)

// IDMarker is the placeholder in a path template replaced by the escaped id.
const IDMarker = "#id#"

// Op is a set of adapter operations.
type Op uint8

const (
	OpShow Op = 1 << iota
	OpList
	OpCount
	OpCreate
	OpUpdate
	OpDelete

	OpNone Op = 0
	OpAll     = OpShow | OpList | OpCount | OpCreate | OpUpdate | OpDelete
)

var opNames = []struct {
	op   Op
	name string
}{
	{OpShow, "show"},
	{OpList, "list"},
	{OpCount, "count"},
	{OpCreate, "create"},
	{OpUpdate, "update"},
	{OpDelete, "delete"},
}

func (o Op) String() string {
	var names []string
	for _, n := range opNames {
		if o&n.op != 0 {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Descriptor is the fixed endpoint metadata of one resource kind.
type Descriptor struct {
	// Kind is the singular name, e.g. "product".
	Kind string
	// Collection is the plural name used as a path segment, e.g. "products".
	Collection string
	// Path is the member path template, e.g. "/admin/products/#id#.json".
	// Singleton kinds carry no marker.
	Path string
	// Wrap and WrapMany are the JSON keys wrapping one record and a list.
	Wrap     string
	WrapMany string
	Fields   []string
	// IgnoreOnUpdate lists attributes stripped from update bodies.
	IgnoreOnUpdate []string
	// Ops is the set of supported operations.
	Ops Op

	// Parents lists the collections this kind may be nested under.
	Parents []string
	// ScopeRequired makes list, count and create fail without a parent.
	ScopeRequired bool
	// ScopeMembers routes show, update and delete through the parent too.
	ScopeMembers bool
	// ScopeField names a create attribute that stands in for the parent id
	// when no scope is bound (variants accept product_id).
	ScopeField string
}

// HasField reports whether name is a declared field.
func (d *Descriptor) HasField(name string) bool {
	return slices.Contains(d.Fields, name)
}

// Supports reports whether every operation in op is allowed.
func (d *Descriptor) Supports(op Op) bool {
	return d.Ops&op == op
}

// Singleton reports whether the kind has a single record per shop.
func (d *Descriptor) Singleton() bool {
	return !strings.Contains(d.Path, IDMarker)
}

func (d *Descriptor) allowsParent(collection string) bool {
	return slices.Contains(d.Parents, collection)
}

// ExpandPath replaces the id marker in tmpl with id percent-encoded. With a
// zero id the template is returned unchanged, marker included.
func ExpandPath(tmpl string, id ID) string {
	if id.IsZero() {
		return tmpl
	}
	return strings.Replace(tmpl, IDMarker, EscapeID(id), 1)
}

// EscapeID percent-encodes id for use as a path segment. Only unreserved
// characters (alphanumerics and -_.~) are kept; space becomes %20.
func EscapeID(id ID) string {
	return strings.ReplaceAll(url.QueryEscape(string(id)), "+", "%20")
}

// CollectionPath derives the collection path from a member template:
// /admin/products/#id#.json -> /admin/products.json.
func CollectionPath(tmpl string) string {
	return strings.Replace(tmpl, "/"+IDMarker, "", 1)
}

// CountPath derives the count path from a member template:
// /admin/products/#id#.json -> /admin/products/count.json.
func CountPath(tmpl string) string {
	return strings.Replace(tmpl, IDMarker, "count", 1)
}

// NestPath moves path under a parent member:
// /admin/metafields.json -> /admin/products/5/metafields.json.
func NestPath(path, parentCollection string, parentID ID) string {
	return "/admin/" + parentCollection + "/" + EscapeID(parentID) + "/" + strings.TrimPrefix(path, "/admin/")
}

// ActionPath appends an action segment to a member path:
// /admin/discounts/3.json -> /admin/discounts/3/enable.json.
func ActionPath(memberPath, action string) string {
	return strings.TrimSuffix(memberPath, ".json") + "/" + action + ".json"
}

// Unwrap returns resp[key] when resp is an object holding key, otherwise
// resp unchanged.
func Unwrap(resp any, key string) any {
	if m, ok := resp.(map[string]any); ok && key != "" {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return resp
}

// UnwrapObject applies Unwrap and returns the result as an attribute map.
// Non-object payloads yield nil.
func UnwrapObject(resp any, key string) map[string]any {
	m, _ := Unwrap(resp, key).(map[string]any)
	return m
}

// UnwrapList applies Unwrap with the plural key and returns the objects of
// the resulting list. Non-object elements are skipped.
func UnwrapList(resp any, key string) []map[string]any {
	items, _ := Unwrap(resp, key).([]any)
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
