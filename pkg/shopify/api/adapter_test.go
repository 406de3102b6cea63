package api_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopifyapi/pkg/shopify/api"
	"shopifyapi/pkg/shopify/api/apitest"
)

func resolve(t *testing.T, rec *apitest.Recorder, kind string) *api.Adapter {
	t.Helper()
	a, err := api.NewRegistry(rec).Resolve(kind)
	require.NoError(t, err)
	return a
}

func TestAdapter_CreateWrapsBody(t *testing.T) {
	rec := apitest.New().On(http.MethodPost, "/admin/products.json", map[string]any{
		"product": map[string]any{"id": 99, "title": "T"},
	})
	products := resolve(t, rec, "products")

	resp, err := products.Create(context.Background(), map[string]any{"title": "T"})
	require.NoError(t, err)

	call := rec.Last()
	assert.Equal(t, http.MethodPost, call.Method)
	assert.Equal(t, "/admin/products.json", call.Path)
	assert.Equal(t, map[string]any{"product": map[string]any{"title": "T"}}, call.Body)
	assert.Equal(t, map[string]any{"id": 99, "title": "T"}, api.UnwrapObject(resp, "product"))
}

func TestAdapter_UpdateStripsIgnoredFields(t *testing.T) {
	rec := apitest.New().On(http.MethodPut, "/admin/variants/3.json", map[string]any{})
	variants := resolve(t, rec, api.KindVariant)

	attrs := map[string]any{"price": "1.00", "created_at": "x", "updated_at": "y"}
	_, err := variants.Update(context.Background(), "3", attrs)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"variant": map[string]any{"price": "1.00"}}, rec.Last().Body)
	assert.Len(t, attrs, 3, "caller's map must not be modified")
}

func TestAdapter_ShowAndDelete(t *testing.T) {
	rec := apitest.New().
		On(http.MethodGet, "/admin/orders/1.json", map[string]any{"order": map[string]any{"id": 1}}).
		On(http.MethodDelete, "/admin/orders/1.json", map[string]any{})
	orders := resolve(t, rec, api.KindOrder)

	_, err := orders.Show(context.Background(), "1", nil)
	require.NoError(t, err)
	_, err = orders.Delete(context.Background(), "1", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Count(""))

	_, err = orders.Show(context.Background(), "", nil)
	assert.ErrorIs(t, err, api.ErrUnsupportedOperation)
	assert.Equal(t, 2, rec.Count(""), "no request without an id")
}

func TestAdapter_Count(t *testing.T) {
	rec := apitest.New().
		On(http.MethodGet, "/admin/products/count.json", map[string]any{"count": 12}).
		On(http.MethodGet, "/admin/webhooks/count.json", map[string]any{"other": 1})

	n, err := resolve(t, rec, api.KindProduct).Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	n, err = resolve(t, rec, api.KindWebhook).Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestAdapter_CountPropagatesTransportError(t *testing.T) {
	boom := &api.TransportError{Method: http.MethodGet, Path: "/admin/orders/count.json", StatusCode: 500}
	rec := apitest.New().Fail(http.MethodGet, "/admin/orders/count.json", boom)

	_, err := resolve(t, rec, api.KindOrder).Count(context.Background(), nil)
	assert.ErrorIs(t, err, api.ErrTransport)
	assert.Same(t, boom, err)
}

func TestAdapter_GetField(t *testing.T) {
	rec := apitest.New().On(http.MethodGet, "/admin/products/5.json", map[string]any{
		"product": map[string]any{"title": "Shirt"},
	})
	products := resolve(t, rec, api.KindProduct)

	v, err := products.GetField(context.Background(), "5", "title")
	require.NoError(t, err)
	assert.Equal(t, "Shirt", v)
	assert.Equal(t, "title", rec.Last().Query.Get("fields"))

	_, err = products.GetField(context.Background(), "5", "colour")
	var fe *api.FieldError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, api.ErrInvalidField)
	assert.Equal(t, "colour", fe.Field)
	assert.Equal(t, 1, rec.Count(""))
}

func TestAdapter_UnsupportedOperation(t *testing.T) {
	rec := apitest.New()

	_, err := resolve(t, rec, api.KindDiscount).Update(context.Background(), "1", map[string]any{})
	var oe *api.OperationError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "update", oe.Op)
	assert.Equal(t, api.KindDiscount, oe.Kind)

	_, err = resolve(t, rec, api.KindShop).Create(context.Background(), map[string]any{})
	assert.ErrorIs(t, err, api.ErrUnsupportedOperation)
	assert.Zero(t, rec.Count(""))
}

func TestAdapter_ScopedViewDoesNotLeak(t *testing.T) {
	rec := apitest.New().
		On(http.MethodGet, "/admin/products/5/metafields.json", map[string]any{"metafields": []any{}}).
		On(http.MethodGet, "/admin/metafields.json", map[string]any{"metafields": []any{}})
	metafields := resolve(t, rec, api.KindMetafield)

	_, err := metafields.Product("5").All(context.Background(), nil)
	require.NoError(t, err)
	_, err = metafields.All(context.Background(), nil)
	require.NoError(t, err)

	calls := rec.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "/admin/products/5/metafields.json", calls[0].Path)
	assert.NotContains(t, calls[1].Path, "/products/5/")

	_, _, scoped := metafields.Scope()
	assert.False(t, scoped)
}

func TestAdapter_ScopedMemberPaths(t *testing.T) {
	rec := apitest.New()
	rec.Fallback = func(req api.Request) (any, error) { return map[string]any{}, nil }
	metafields := resolve(t, rec, api.KindMetafield)
	ctx := context.Background()

	_, err := metafields.Order("8").Update(ctx, "11", map[string]any{"value": "x"})
	require.NoError(t, err)
	_, err = metafields.Variant("4").Delete(ctx, "12", nil)
	require.NoError(t, err)
	_, err = metafields.CustomCollection("2").Count(ctx, nil)
	require.NoError(t, err)

	calls := rec.Calls()
	assert.Equal(t, "/admin/orders/8/metafields/11.json", calls[0].Path)
	assert.Equal(t, "/admin/variants/4/metafields/12.json", calls[1].Path)
	assert.Equal(t, "/admin/custom_collections/2/metafields/count.json", calls[2].Path)
}

func TestAdapter_ScopeErrors(t *testing.T) {
	rec := apitest.New()
	ctx := context.Background()
	metafields := resolve(t, rec, api.KindMetafield)
	variants := resolve(t, rec, api.KindVariant)

	_, err := metafields.Product("").All(ctx, nil)
	assert.ErrorIs(t, err, api.ErrMissingScope)
	assert.ErrorIs(t, err, api.ErrUnsupportedOperation)

	_, err = metafields.For("shops", "1").All(ctx, nil)
	assert.ErrorIs(t, err, api.ErrUnsupportedOperation)
	assert.NotErrorIs(t, err, api.ErrMissingScope)

	_, err = variants.All(ctx, nil)
	assert.ErrorIs(t, err, api.ErrMissingScope)

	_, err = variants.Count(ctx, nil)
	assert.ErrorIs(t, err, api.ErrMissingScope)
	assert.Zero(t, rec.Count(""))
}

func TestAdapter_VariantsProductScope(t *testing.T) {
	rec := apitest.New()
	rec.Fallback = func(req api.Request) (any, error) { return map[string]any{}, nil }
	variants := resolve(t, rec, api.KindVariant)
	ctx := context.Background()

	_, err := variants.Product("7").All(ctx, nil)
	require.NoError(t, err)
	_, err = variants.Create(ctx, map[string]any{"product_id": 7, "option1": "Red"})
	require.NoError(t, err)
	_, err = variants.Product("7").Show(ctx, "3", nil)
	require.NoError(t, err)

	calls := rec.Calls()
	assert.Equal(t, "/admin/products/7/variants.json", calls[0].Path)
	assert.Equal(t, "/admin/products/7/variants.json", calls[1].Path)
	assert.Equal(t, "/admin/variants/3.json", calls[2].Path, "member calls stay unscoped")
}

func TestAdapter_ConcurrentScopedViews(t *testing.T) {
	rec := apitest.New()
	rec.Fallback = func(req api.Request) (any, error) { return map[string]any{"metafields": []any{}}, nil }
	metafields := resolve(t, rec, api.KindMetafield)

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := metafields.Product(api.ID(fmt.Sprint(i))).All(context.Background(), nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, c := range rec.Calls() {
		seen[c.Path] = true
		assert.True(t, strings.HasPrefix(c.Path, "/admin/products/"))
	}
	assert.Len(t, seen, 20)
}

func TestRegistry_Resolve(t *testing.T) {
	reg := api.NewRegistry(apitest.New())

	for _, name := range []string{"product", "products", "Product", "Products"} {
		a, err := reg.Resolve(name)
		require.NoError(t, err, name)
		assert.Equal(t, api.KindProduct, a.Kind())
	}

	a, err := reg.Resolve("customCollections")
	require.NoError(t, err)
	assert.Equal(t, api.KindCustomCollection, a.Kind())

	_, err = reg.Resolve("gift_cards")
	var uk *api.UnknownKindError
	require.ErrorAs(t, err, &uk)
	assert.Equal(t, "gift_cards", uk.Name)
	assert.True(t, errors.Is(err, api.ErrUnknownKind))

	assert.Contains(t, reg.Kinds(), api.KindMetafield)
	assert.False(t, reg.Strict())
	assert.True(t, api.NewRegistry(nil, api.WithStrict(true)).Strict())
}

func TestRegistry_WithDescriptor(t *testing.T) {
	rec := apitest.New().On(http.MethodGet, "/admin/redirects.json", map[string]any{"redirects": []any{}})
	reg := api.NewRegistry(rec, api.WithDescriptor(&api.Descriptor{
		Kind:       "redirect",
		Collection: "redirects",
		Path:       "/admin/redirects/#id#.json",
		Wrap:       "redirect",
		WrapMany:   "redirects",
		Ops:        api.OpAll,
		Fields:     []string{"id", "path", "target"},
	}))

	a, err := reg.Resolve("redirects")
	require.NoError(t, err)
	_, err = a.All(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "/admin/redirects.json", rec.Last().Path)
}
