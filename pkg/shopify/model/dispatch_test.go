package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopifyapi/pkg/shopify/api"
)

func TestCall_Accessors(t *testing.T) {
	_, reg := newRegistry()
	v, err := Variants.New(reg)
	require.NoError(t, err)

	out, err := v.Call("setOption1", "Red")
	require.NoError(t, err)
	assert.Same(t, v.Record, out, "setters return the record")

	got, err := v.Call("getOption1")
	require.NoError(t, err)
	assert.Equal(t, "Red", got)

	has, err := v.Call("hasOption1")
	require.NoError(t, err)
	assert.Equal(t, true, has)

	has, err = v.Call("hasInventoryQuantity")
	require.NoError(t, err)
	assert.Equal(t, false, has)
}

func TestCall_UndeclaredField(t *testing.T) {
	_, reg := newRegistry()
	p, err := Products.New(reg)
	require.NoError(t, err)

	_, err = p.Call("setSeoTitle", "S")
	require.NoError(t, err)
	assert.Equal(t, "S", p.GetOriginal("seo_title"))

	got, err := p.Call("getSeoTitle")
	require.NoError(t, err)
	assert.Equal(t, "S", got)
}

func TestCall_StrictGetter(t *testing.T) {
	_, reg := newRegistry(api.WithStrict(true))
	p, err := Products.New(reg)
	require.NoError(t, err)

	_, err = p.Call("getVendor")
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestCall_MethodNotFound(t *testing.T) {
	_, reg := newRegistry()
	o, err := Orders.New(reg)
	require.NoError(t, err)

	for _, method := range []string{"fooBar", "get", "getter", "publish", "settle"} {
		_, err := o.Call(method)
		var me *api.MethodError
		require.ErrorAs(t, err, &me, method)
		assert.ErrorIs(t, err, api.ErrMethodNotFound)
		assert.Equal(t, method, me.Method)
		assert.Equal(t, api.KindOrder, me.Kind)
		assert.Contains(t, err.Error(), "order::"+method)
	}
}

func TestCall_Arity(t *testing.T) {
	_, reg := newRegistry()
	o, err := Orders.New(reg)
	require.NoError(t, err)

	_, err = o.Call("setNote")
	assert.ErrorIs(t, err, api.ErrMethodNotFound)
	_, err = o.Call("getNote", 1)
	assert.ErrorIs(t, err, api.ErrMethodNotFound)
	_, err = o.Call("hasNote", 1, 2)
	assert.ErrorIs(t, err, api.ErrMethodNotFound)
}
