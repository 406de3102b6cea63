package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopifyapi/internal/fakeshop"
	"shopifyapi/pkg/config"
	"shopifyapi/pkg/shopify"
	"shopifyapi/pkg/shopify/api"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SHOPIFY_DOMAIN", "SHOPIFY_ACCESS_TOKEN", "SHOPIFY_API_VERSION",
		"SHOPIFY_STRICT", "SHOPIFY_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT",
		"SHOPIFY_WEBHOOK_SECRET", "HTTP_ADDR",
	} {
		t.Setenv(k, "")
	}
}

func newFake(t *testing.T) (*fakeshop.Server, []string) {
	t.Helper()
	clearEnv(t)
	fake := fakeshop.New(nil)
	fake.Token = "tok"
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)
	return fake, []string{"--base-url", srv.URL, "--shop", "demo", "--token", "tok"}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func decode[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), s)
	return v
}

func TestGet(t *testing.T) {
	fake, base := newFake(t)
	fake.Seed("products", map[string]any{"id": 5, "title": "Hat"})

	out, err := run(t, append(base, "get", "product", "5")...)
	require.NoError(t, err)
	got := decode[map[string]any](t, out)
	assert.Equal(t, "Hat", got["title"])
	assert.EqualValues(t, 5, got["id"])

	_, err = run(t, append(base, "get", "gift_card", "5")...)
	assert.ErrorIs(t, err, api.ErrUnknownKind)

	_, err = run(t, append(base, "get", "product", "404")...)
	assert.ErrorIs(t, err, api.ErrTransport)
}

func TestListAndCount(t *testing.T) {
	fake, base := newFake(t)
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		fake.Seed("orders", map[string]any{"email": email})
	}

	out, err := run(t, append(base, "list", "orders", "-p", "limit=2")...)
	require.NoError(t, err)
	got := decode[[]map[string]any](t, out)
	require.Len(t, got, 2)
	assert.Equal(t, "a@example.com", got[0]["email"])

	out, err = run(t, append(base, "count", "order")...)
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)

	_, err = run(t, append(base, "count", "shop")...)
	assert.ErrorIs(t, err, api.ErrUnsupportedOperation)

	_, err = run(t, append(base, "list", "orders", "-p", "limit")...)
	assert.ErrorContains(t, err, "key=value")
}

func TestField(t *testing.T) {
	fake, base := newFake(t)
	fake.Seed("products", map[string]any{"id": 5, "title": "Hat", "vendor": "Acme"})

	out, err := run(t, append(base, "field", "products", "5", "vendor")...)
	require.NoError(t, err)
	assert.Equal(t, "\"Acme\"\n", out)

	reqs := fake.Requests()
	require.NotEmpty(t, reqs)
	assert.Equal(t, "vendor", reqs[len(reqs)-1].Query.Get("fields"))
}

func TestShop(t *testing.T) {
	_, base := newFake(t)

	out, err := run(t, append(base, "shop")...)
	require.NoError(t, err)
	assert.Equal(t, "Fake Shop", decode[map[string]any](t, out)["name"])
}

func TestMetafields(t *testing.T) {
	fake, base := newFake(t)
	fake.Seed("products", map[string]any{"id": 5})

	out, err := run(t, append(base, "metafields", "set", "product", "5", "custom", "size", "42", "--type", "integer")...)
	require.NoError(t, err)
	mf := decode[map[string]any](t, out)
	assert.Equal(t, "integer", mf["value_type"])
	assert.Equal(t, "product", mf["owner_resource"])

	out, err = run(t, append(base, "metafields", "list", "product", "5")...)
	require.NoError(t, err)
	list := decode[[]map[string]any](t, out)
	require.Len(t, list, 1)
	assert.Equal(t, "size", list[0]["key"])

	out, err = run(t, append(base, "metafields", "set", "product", "5", "custom", "size", "")...)
	require.NoError(t, err)
	assert.Equal(t, "deleted\n", out)

	_, err = run(t, append(base, "metafields", "delete", "product", "5", "custom", "size")...)
	assert.ErrorContains(t, err, "custom.size does not exist")

	_, err = run(t, append(base, "metafields", "list", "webhook", "1")...)
	assert.ErrorIs(t, err, api.ErrUnsupportedOperation)
}

func TestManagerSelection(t *testing.T) {
	clearEnv(t)

	_, err := run(t, "shop")
	assert.ErrorContains(t, err, "no shop given")

	_, err = run(t, "--shop", "bad shop", "--token", "x", "shop")
	assert.ErrorContains(t, err, "invalid shop")
}

func TestWrongToken(t *testing.T) {
	_, base := newFake(t)
	base[len(base)-1] = "nope"

	_, err := run(t, append(base, "shop")...)
	var te *api.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 401, te.StatusCode)
}

func TestParseParams(t *testing.T) {
	q, err := parseParams([]string{"ids=1,2", "fields=id", "fields=title", "empty="})
	require.NoError(t, err)
	assert.Equal(t, url.Values{"ids": {"1,2"}, "fields": {"id", "title"}, "empty": {""}}, q)

	q, err = parseParams(nil)
	require.NoError(t, err)
	assert.Nil(t, q)

	_, err = parseParams([]string{"=x"})
	assert.Error(t, err)
}

func TestParseMetafieldValue(t *testing.T) {
	v, err := parseMetafieldValue("7", "integer")
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)

	v, err = parseMetafieldValue(`{"a":1}`, "json")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, v)

	v, err = parseMetafieldValue("", "integer")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	_, err = parseMetafieldValue("x", "integer")
	assert.Error(t, err)
	_, err = parseMetafieldValue("x", "yaml")
	assert.ErrorContains(t, err, "unknown value type")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, config.LogConfig{Level: slog.LevelInfo, Format: "json"}).Debug("hidden")
	newLogger(&buf, config.LogConfig{Level: slog.LevelInfo, Format: "json"}).Info("shown", "k", "v")
	line := strings.TrimSpace(buf.String())
	assert.Equal(t, "shown", decode[map[string]any](t, line)["msg"])

	buf.Reset()
	newLogger(&buf, config.LogConfig{Level: slog.LevelDebug, Format: "text"}).Debug("here")
	assert.Contains(t, buf.String(), "source=")
	assert.Contains(t, buf.String(), "msg=here")
}

func TestWebhookSend(t *testing.T) {
	clearEnv(t)
	var got http.Header
	var verified bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = r.Header.Clone()
		verified = shopify.VerifyWebhook(body, r.Header.Get("X-Shopify-Hmac-Sha256"), "whsec")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	out, err := run(t, "--shop", "demo", "webhook", "send",
		"--url", srv.URL, "--topic", "orders_create", "--secret", "whsec", "--id", "w-1")
	require.NoError(t, err)
	assert.Equal(t, "status=200\n", out)
	assert.True(t, verified)
	assert.Equal(t, "orders/create", got.Get("X-Shopify-Topic"))
	assert.Equal(t, "demo.myshopify.com", got.Get("X-Shopify-Shop-Domain"))
	assert.Equal(t, "w-1", got.Get("X-Shopify-Webhook-Id"))

	_, err = run(t, "webhook", "send", "--url", srv.URL, "--topic", "orders/exploded", "--secret", "x")
	assert.ErrorContains(t, err, "unknown topic")

	t.Setenv("SHOPIFY_WEBHOOK_SECRET", "")
	_, err = run(t, "webhook", "send", "--url", srv.URL)
	assert.ErrorContains(t, err, "missing --secret")
}

func TestWebhookTopics(t *testing.T) {
	clearEnv(t)
	out, err := run(t, "webhook", "topics")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, shopify.Topics(), lines)
}

func TestLocalURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080", localURL(""))
	assert.Equal(t, "http://localhost:9000", localURL(":9000"))
	assert.Equal(t, "http://127.0.0.1:9000", localURL("127.0.0.1:9000"))
}
