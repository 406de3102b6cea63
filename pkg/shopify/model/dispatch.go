package model

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"shopifyapi/pkg/shopify/api"
)

type accessorAction int

const (
	actionGet accessorAction = iota
	actionSet
	actionHas
)

type accessor struct {
	action accessorAction
	key    string
}

var accessorPrefixes = []struct {
	prefix string
	action accessorAction
}{
	{"get", actionGet},
	{"set", actionSet},
	{"has", actionHas},
}

// accessorTables caches one table per kind and field list, built from the
// declared fields: "getBodyHtml" -> {get, "body_html"}.
var accessorTables sync.Map

func accessorTable(d *api.Descriptor) map[string]accessor {
	cacheKey := d.Kind + ":" + strings.Join(d.Fields, ",")
	if t, ok := accessorTables.Load(cacheKey); ok {
		return t.(map[string]accessor)
	}
	t := make(map[string]accessor, len(d.Fields)*len(accessorPrefixes))
	for _, f := range d.Fields {
		camel := api.CamelCase(f)
		for _, p := range accessorPrefixes {
			t[p.prefix+camel] = accessor{action: p.action, key: f}
		}
	}
	actual, _ := accessorTables.LoadOrStore(cacheKey, t)
	return actual.(map[string]accessor)
}

// Call dispatches an accessor-shaped method name: getX() reads, setX(v)
// writes and returns the record, hasX() tests presence, where X is the
// camel form of the attribute key. Declared fields resolve through a
// per-kind table; other names are converted from camel case, so undeclared
// keys work too. Anything else fails with a MethodError.
func (r *Record) Call(method string, args ...any) (any, error) {
	acc, ok := accessorTable(r.api.Descriptor())[method]
	if !ok {
		acc, ok = parseAccessor(method)
	}
	if !ok {
		return nil, &api.MethodError{Kind: r.kind, Method: method}
	}

	switch acc.action {
	case actionGet:
		if len(args) != 0 {
			return nil, &api.MethodError{Kind: r.kind, Method: method, Reason: "getter takes no arguments"}
		}
		return r.Get(acc.key)
	case actionSet:
		if len(args) != 1 {
			return nil, &api.MethodError{Kind: r.kind, Method: method, Reason: "setter takes exactly one argument"}
		}
		return r.Set(acc.key, args[0]), nil
	default:
		if len(args) != 0 {
			return nil, &api.MethodError{Kind: r.kind, Method: method, Reason: "has takes no arguments"}
		}
		return r.Has(acc.key), nil
	}
}

func parseAccessor(method string) (accessor, bool) {
	for _, p := range accessorPrefixes {
		rest, ok := strings.CutPrefix(method, p.prefix)
		if !ok || rest == "" {
			continue
		}
		first, _ := utf8.DecodeRuneInString(rest)
		if !unicode.IsUpper(first) {
			return accessor{}, false
		}
		return accessor{action: p.action, key: api.SnakeCase(rest)}, true
	}
	return accessor{}, false
}
