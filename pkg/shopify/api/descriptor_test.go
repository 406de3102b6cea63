package api_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shopifyapi/pkg/shopify/api"
)

func TestExpandPath(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		id   api.ID
		want string
	}{
		{"numeric", "/admin/products/#id#.json", "42", "/admin/products/42.json"},
		{"escaped", "/admin/products/#id#.json", "a b/c", "/admin/products/a%20b%2Fc.json"},
		{"unreserved kept", "/admin/products/#id#.json", "x-y_z.~", "/admin/products/x-y_z.~.json"},
		{"no id keeps marker", "/admin/products/#id#.json", "", "/admin/products/#id#.json"},
		{"singleton", "/admin/shop.json", "1", "/admin/shop.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, api.ExpandPath(tt.tmpl, tt.id))
		})
	}
}

func TestDerivedPaths(t *testing.T) {
	tmpl := "/admin/metafields/#id#.json"

	assert.Equal(t, "/admin/metafields.json", api.CollectionPath(tmpl))
	assert.Equal(t, "/admin/metafields/count.json", api.CountPath(tmpl))
	assert.Equal(t, "/admin/products/5/metafields.json", api.NestPath(api.CollectionPath(tmpl), "products", "5"))
	assert.Equal(t, "/admin/discounts/3/enable.json", api.ActionPath("/admin/discounts/3.json", "enable"))
	assert.Equal(t, "/admin/shop.json", api.CollectionPath("/admin/shop.json"))
}

func TestUnwrap(t *testing.T) {
	inner := map[string]any{"id": 1, "email": "a@b.com"}

	assert.Equal(t, inner, api.UnwrapObject(map[string]any{"order": inner}, "order"))

	raw := map[string]any{"id": 2, "email": "c@d.com"}
	assert.Equal(t, raw, api.UnwrapObject(raw, "order"))

	assert.Nil(t, api.UnwrapObject("not an object", "order"))
	assert.Equal(t, "scalar", api.Unwrap("scalar", "order"))

	list := api.UnwrapList(map[string]any{"orders": []any{inner, "junk", raw}}, "orders")
	assert.Equal(t, []map[string]any{inner, raw}, list)
}

func TestDescriptorCapabilities(t *testing.T) {
	byKind := map[string]*api.Descriptor{}
	for _, d := range api.Builtin() {
		byKind[d.Kind] = d
	}

	assert.False(t, byKind[api.KindDiscount].Supports(api.OpUpdate))
	assert.True(t, byKind[api.KindDiscount].Supports(api.OpShow|api.OpDelete))
	assert.True(t, byKind[api.KindShop].Singleton())
	assert.False(t, byKind[api.KindShop].Supports(api.OpCreate))
	assert.True(t, byKind[api.KindProduct].HasField("body_html"))
	assert.False(t, byKind[api.KindProduct].HasField("nope"))
	assert.Equal(t, "create|update", (api.OpCreate | api.OpUpdate).String())
}

func TestNaming(t *testing.T) {
	assert.Equal(t, "body_html", api.SnakeCase("BodyHtml"))
	assert.Equal(t, "body_html", api.SnakeCase("body_html"))
	assert.Equal(t, "html_body", api.SnakeCase("HTMLBody"))
	assert.Equal(t, "option1", api.SnakeCase("Option1"))
	assert.Equal(t, "custom_collections", api.SnakeCase("customCollections"))
	assert.Equal(t, "BodyHtml", api.CamelCase("body_html"))
	assert.Equal(t, "Option1", api.CamelCase("option1"))
}

func TestIDOf(t *testing.T) {
	id, ok := api.IDOf(7)
	assert.True(t, ok)
	assert.Equal(t, api.ID("7"), id)

	id, ok = api.IDOf(float64(632910392))
	assert.True(t, ok)
	assert.Equal(t, api.ID("632910392"), id)

	_, ok = api.IDOf(nil)
	assert.False(t, ok)
	_, ok = api.IDOf("")
	assert.False(t, ok)
}
