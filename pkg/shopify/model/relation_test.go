package model

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopifyapi/pkg/shopify/api"
	"shopifyapi/pkg/shopify/api/apitest"
)

const productMetafields = "/admin/products/5/metafields.json"

func productWithMetafields(t *testing.T, metafields ...any) (*apitest.Recorder, *Product) {
	t.Helper()
	rec, reg := newRegistry()
	rec.On(http.MethodGet, productMetafields, map[string]any{"metafields": metafields})
	p, err := Products.From(reg, map[string]any{"id": 5})
	require.NoError(t, err)
	return rec, p
}

func colorMetafield() map[string]any {
	return map[string]any{
		"id": 11, "key": "color", "namespace": "custom", "value": "blue", "value_type": "string",
		"owner_id": 5, "owner_resource": "product",
	}
}

func TestMetafields_List(t *testing.T) {
	rec, p := productWithMetafields(t, colorMetafield(), map[string]any{"id": 12, "key": "size", "namespace": "custom"})

	mfs, err := p.Metafields().List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, mfs, 2)
	assert.Equal(t, "color", mfs[0].Key())
	assert.Equal(t, api.ID("12"), mfs[1].ID())
	assert.Equal(t, 1, rec.Count(""))
}

func TestMetafields_FindAndExists(t *testing.T) {
	_, p := productWithMetafields(t, colorMetafield())
	ctx := context.Background()

	m, ok, err := p.Metafields().Find(ctx, "color", "custom")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "blue", m.Value())

	m, ok, err = p.Metafields().Find(ctx, "color", "other")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, m)

	exists, err := p.Metafields().Exists(ctx, "color", "custom")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMetafields_UpsertCreatesWhenMissing(t *testing.T) {
	rec, p := productWithMetafields(t)
	rec.On(http.MethodPost, productMetafields, map[string]any{"metafield": map[string]any{
		"id": 20, "key": "color", "namespace": "custom", "value": "red", "value_type": "string",
	}})

	m, err := p.Metafields().Upsert(context.Background(), "color", "custom", map[string]any{"value": "red"})
	require.NoError(t, err)

	assert.Equal(t, 1, rec.Count(http.MethodPost))
	assert.Equal(t, map[string]any{"metafield": map[string]any{
		"key": "color", "namespace": "custom", "value": "red", "value_type": "string",
	}}, rec.Last().Body)
	assert.Equal(t, api.ID("20"), m.ID())
}

func TestMetafields_CreateNormalizesValue(t *testing.T) {
	tests := []struct {
		name      string
		attrs     map[string]any
		value     any
		valueType string
	}{
		{"absent", map[string]any{}, "null", "string"},
		{"nil", map[string]any{"value": nil}, "null", "string"},
		{"integer", map[string]any{"value": 42}, 42, "integer"},
		{"string", map[string]any{"value": "x"}, "x", "string"},
		{"object", map[string]any{"value": map[string]any{"a": 1}}, `{"a":1}`, "string"},
		{"list overrides type", map[string]any{"value": []any{1, 2}, "value_type": "integer"}, "[1,2]", "string"},
		{"explicit type kept", map[string]any{"value": "7", "value_type": "integer"}, "7", "integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, p := productWithMetafields(t)
			rec.On(http.MethodPost, productMetafields, map[string]any{"metafield": map[string]any{"id": 1}})

			_, err := p.Metafields().Create(context.Background(), "k", "ns", tt.attrs)
			require.NoError(t, err)

			body := rec.Last().Body.(map[string]any)["metafield"].(map[string]any)
			assert.Equal(t, tt.value, body["value"])
			assert.Equal(t, tt.valueType, body["value_type"])
			assert.Equal(t, "k", body["key"])
			assert.Equal(t, "ns", body["namespace"])
		})
	}
}

func TestMetafields_UpdateSkipsSystemFields(t *testing.T) {
	rec, p := productWithMetafields(t, colorMetafield())
	rec.On(http.MethodPut, "/admin/products/5/metafields/11.json", map[string]any{"metafield": map[string]any{"id": 11}})
	rec.On(http.MethodGet, "/admin/metafields/11.json", map[string]any{"metafield": colorMetafield()})

	_, err := p.Metafields().Update(context.Background(), "color", "custom", map[string]any{
		"value":      "green",
		"id":         999,
		"owner_id":   1,
		"updated_at": "2020-01-01T00:00:00Z",
	})
	require.NoError(t, err)

	var put apitest.Call
	for _, c := range rec.Calls() {
		if c.Method == http.MethodPut {
			put = c
		}
	}
	require.Equal(t, "/admin/products/5/metafields/11.json", put.Path)
	body := put.Body.(map[string]any)["metafield"].(map[string]any)
	assert.Equal(t, "green", body["value"])
	assert.Equal(t, 11, body["id"])
	assert.Equal(t, 5, body["owner_id"])
	assert.NotContains(t, body, "updated_at")
}

func TestMetafields_UpdateMissing(t *testing.T) {
	rec, p := productWithMetafields(t)

	_, err := p.Metafields().Update(context.Background(), "color", "custom", map[string]any{"value": "x"})
	var oe *api.OperationError
	require.ErrorAs(t, err, &oe)
	assert.Contains(t, oe.Reason, "does not exist")
	assert.Equal(t, 1, rec.Count(""))
}

func TestMetafields_UpsertOrDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("empty value deletes match", func(t *testing.T) {
		rec, p := productWithMetafields(t, colorMetafield())
		rec.On(http.MethodDelete, "/admin/products/5/metafields/11.json", map[string]any{})

		_, changed, err := p.Metafields().UpsertOrDelete(ctx, "color", "custom", map[string]any{})
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, 1, rec.Count(http.MethodDelete))
	})

	t.Run("empty value without match", func(t *testing.T) {
		rec, p := productWithMetafields(t)

		_, changed, err := p.Metafields().UpsertOrDelete(ctx, "color", "custom", map[string]any{"value": ""})
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, 1, rec.Count(http.MethodGet), "only the lookup")
		assert.Zero(t, rec.Count(http.MethodDelete)+rec.Count(http.MethodPost)+rec.Count(http.MethodPut))
	})

	t.Run("decoded zero deletes match", func(t *testing.T) {
		rec, p := productWithMetafields(t, colorMetafield())
		rec.On(http.MethodDelete, "/admin/products/5/metafields/11.json", map[string]any{})

		_, changed, err := p.Metafields().UpsertOrDelete(ctx, "color", "custom", map[string]any{"value": json.Number("0")})
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, 1, rec.Count(http.MethodDelete))
	})

	t.Run("value upserts", func(t *testing.T) {
		rec, p := productWithMetafields(t)
		rec.On(http.MethodPost, productMetafields, map[string]any{"metafield": map[string]any{"id": 30}})

		m, changed, err := p.Metafields().UpsertOrDelete(ctx, "color", "custom", map[string]any{"value": "red"})
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, api.ID("30"), m.ID())
	})
}

func TestMetafields_Delete(t *testing.T) {
	rec, p := productWithMetafields(t, colorMetafield())
	rec.On(http.MethodDelete, "/admin/products/5/metafields/11.json", map[string]any{})
	ctx := context.Background()

	require.NoError(t, p.Metafields().Delete(ctx, "color", "custom"))
	assert.Equal(t, 1, rec.Count(http.MethodDelete))

	err := p.Metafields().Delete(ctx, "missing", "custom")
	assert.ErrorIs(t, err, api.ErrUnsupportedOperation)
}

func TestMetafields_ParentWithoutIdentity(t *testing.T) {
	rec, reg := newRegistry()
	o, err := Orders.New(reg)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = o.Metafields().List(ctx, nil)
	assert.ErrorIs(t, err, api.ErrMissingScope)
	assert.ErrorIs(t, err, api.ErrUnsupportedOperation)

	_, err = o.Metafields().Create(ctx, "k", "ns", nil)
	assert.ErrorIs(t, err, api.ErrMissingScope)

	_, _, err = o.Metafields().Find(ctx, "k", "ns")
	assert.ErrorIs(t, err, api.ErrMissingScope)

	_, err = o.Metafields().Count(ctx, nil)
	assert.ErrorIs(t, err, api.ErrMissingScope)

	assert.Zero(t, rec.Count(""))
}

func TestMetafields_OtherOwners(t *testing.T) {
	rec, reg := newRegistry()
	rec.Fallback = func(api.Request) (any, error) { return map[string]any{"metafields": []any{}}, nil }
	ctx := context.Background()

	o, err := Orders.From(reg, map[string]any{"id": 1})
	require.NoError(t, err)
	v, err := Variants.From(reg, map[string]any{"id": 2})
	require.NoError(t, err)
	c, err := CustomCollections.From(reg, map[string]any{"id": 3})
	require.NoError(t, err)

	for _, owner := range []MetafieldOwner{o, v, c} {
		_, err := owner.Metafields().List(ctx, nil)
		require.NoError(t, err)
	}

	calls := rec.Calls()
	assert.Equal(t, "/admin/orders/1/metafields.json", calls[0].Path)
	assert.Equal(t, "/admin/variants/2/metafields.json", calls[1].Path)
	assert.Equal(t, "/admin/custom_collections/3/metafields.json", calls[2].Path)
}

func TestMetafieldsOf(t *testing.T) {
	rec, reg := newRegistry()
	rec.Fallback = func(api.Request) (any, error) { return map[string]any{"metafields": []any{}}, nil }
	ctx := context.Background()

	for kind, path := range map[string]string{
		"products":         "/admin/products/5/metafields.json",
		"Variant":          "/admin/variants/5/metafields.json",
		"order":            "/admin/orders/5/metafields.json",
		"customCollection": "/admin/custom_collections/5/metafields.json",
	} {
		set, err := MetafieldsOf(reg, kind, "5")
		require.NoError(t, err, kind)
		_, err = set.List(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, path, rec.Last().Path, kind)
	}

	_, err := MetafieldsOf(reg, "webhook", "5")
	assert.ErrorIs(t, err, api.ErrUnsupportedOperation)
	_, err = MetafieldsOf(reg, "gift_card", "5")
	assert.ErrorIs(t, err, api.ErrUnknownKind)
}

func TestProductVariants(t *testing.T) {
	rec, reg := newRegistry()
	rec.On(http.MethodGet, "/admin/products/7/variants.json", map[string]any{"variants": []any{
		map[string]any{"id": 70, "product_id": 7, "option1": "Red", "price": "9.50"},
	}})
	rec.On(http.MethodGet, "/admin/products/7/variants/count.json", map[string]any{"count": 1})
	p, err := Products.From(reg, map[string]any{"id": 7})
	require.NoError(t, err)
	ctx := context.Background()

	vs, err := p.Variants().List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, "9.50", vs[0].Price().StringFixed(2))
	assert.Equal(t, api.ID("7"), vs[0].ProductID())

	n, err := p.Variants().Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestProductVariants_NewSavesUnderProduct(t *testing.T) {
	rec, reg := newRegistry()
	rec.On(http.MethodPost, "/admin/products/7/variants.json", map[string]any{"variant": map[string]any{"id": 71}})
	rec.On(http.MethodGet, "/admin/variants/71.json", map[string]any{"variant": map[string]any{"id": 71, "option1": "Blue"}})
	p, err := Products.From(reg, map[string]any{"id": 7})
	require.NoError(t, err)

	v, err := p.Variants().New()
	require.NoError(t, err)
	v.Set("option1", "Blue")
	require.NoError(t, v.Save(context.Background()))
	assert.Equal(t, api.ID("71"), v.ID())
	assert.Equal(t, "/admin/products/7/variants.json", rec.Calls()[0].Path)
}

func TestVariant_CreateRequiresOption(t *testing.T) {
	rec, reg := newRegistry()
	v, err := Variants.From(reg, map[string]any{"product_id": 7, "price": "1.00"})
	require.NoError(t, err)

	err = v.Save(context.Background())
	var oe *api.OperationError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "an option is required", oe.Reason)
	assert.Zero(t, rec.Count(""))
}

func TestIsEmptyValue(t *testing.T) {
	empty := []any{nil, "", "0", false, 0, int32(0), uint8(0), float32(0), 0.0, json.Number("0"), json.Number("0.0"), []any{}, map[string]any{}}
	for _, v := range empty {
		assert.True(t, isEmptyValue(v), "%#v", v)
	}
	present := []any{"a", "0.0", true, 1, int32(-1), uint(3), 0.5, json.Number("12"), []any{1}, map[string]any{"a": 1}}
	for _, v := range present {
		assert.False(t, isEmptyValue(v), "%#v", v)
	}
}
