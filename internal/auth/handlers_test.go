package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopifyapi/internal/fakeshop"
	"shopifyapi/internal/shop"
	"shopifyapi/pkg/config"
	"shopifyapi/pkg/shopify"
)

type memShops map[string]*shop.Shop

func (m memShops) Upsert(_ context.Context, domain, token, scopes string) (*shop.Shop, error) {
	s := &shop.Shop{Domain: domain, AccessToken: token, Scopes: scopes, Status: "active"}
	m[domain] = s
	return s, nil
}

func newHandlers(t *testing.T, publicBase string) (Handlers, memShops, *fakeshop.Server) {
	t.Helper()
	fake := fakeshop.New(nil)
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"shpat_new","scope":"read_products"}`))
	})
	mux.Handle("/", fake.Handler())
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	shops := memShops{}
	h := Handlers{
		Cfg: config.Config{
			AppEnv:        "dev",
			PublicBaseURL: publicBase,
			Shopify: config.ShopifyConfig{
				APIKey:      "key",
				APISecret:   "secret",
				Scopes:      "read_products, write_products",
				RedirectURL: "https://app.example.com/v1/auth/callback",
			},
		},
		Shops:     shops,
		Exchanger: shopify.OAuthExchanger{BaseURL: srv.URL},
		Options:   shopify.Options{BaseURL: srv.URL},
	}
	return h, shops, fake
}

func TestInstall(t *testing.T) {
	h, _, _ := newHandlers(t, "")
	rec := httptest.NewRecorder()
	h.Install(rec, httptest.NewRequest(http.MethodGet, "/v1/auth/install?shop=demo", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "demo.myshopify.com", loc.Host)
	assert.Equal(t, "read_products,write_products", loc.Query().Get("scope"))
	assert.Equal(t, "key", loc.Query().Get("client_id"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, stateCookie, cookies[0].Name)
	assert.Equal(t, cookies[0].Value, loc.Query().Get("state"))

	rec = httptest.NewRecorder()
	h.Install(rec, httptest.NewRequest(http.MethodGet, "/v1/auth/install", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func callbackRequest(state, cookie, secret string) *http.Request {
	q := url.Values{
		"shop":      {"demo.myshopify.com"},
		"code":      {"c0de"},
		"state":     {state},
		"timestamp": {"1700000000"},
	}
	q.Set("hmac", shopify.SignOAuthQuery(q, secret))
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/callback?"+q.Encode(), nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: cookie})
	}
	return req
}

func TestCallback(t *testing.T) {
	h, shops, fake := newHandlers(t, "https://app.example.com/")
	rec := httptest.NewRecorder()
	h.Callback(rec, callbackRequest("st", "st", "secret"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "installed", rec.Body.String())
	require.Contains(t, shops, "demo.myshopify.com")
	assert.Equal(t, "shpat_new", shops["demo.myshopify.com"].AccessToken)
	assert.Equal(t, "read_products", shops["demo.myshopify.com"].Scopes)

	var addresses []string
	for _, r := range fake.Requests() {
		if r.Method != http.MethodPost {
			continue
		}
		assert.Equal(t, "shpat_new", r.Header.Get("X-Shopify-Access-Token"))
		wh := r.Body.(map[string]any)["webhook"].(map[string]any)
		addresses = append(addresses, wh["address"].(string))
	}
	assert.Equal(t, []string{
		"https://app.example.com/v1/webhooks/shopify/app_uninstalled",
		"https://app.example.com/v1/webhooks/shopify/shop_update",
	}, addresses)
}

func TestCallback_NoPublicURL(t *testing.T) {
	h, shops, fake := newHandlers(t, "")
	rec := httptest.NewRecorder()
	h.Callback(rec, callbackRequest("st", "st", "secret"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, shops, 1)
	assert.Empty(t, fake.Requests())
}

func TestCallback_Rejects(t *testing.T) {
	tests := map[string]struct {
		req  *http.Request
		code int
	}{
		"missing code":  {httptest.NewRequest(http.MethodGet, "/v1/auth/callback?shop=demo", nil), http.StatusBadRequest},
		"no cookie":     {callbackRequest("st", "", "secret"), http.StatusBadRequest},
		"state differs": {callbackRequest("st", "other", "secret"), http.StatusBadRequest},
		"bad hmac":      {callbackRequest("st", "st", "wrong"), http.StatusUnauthorized},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h, shops, _ := newHandlers(t, "")
			rec := httptest.NewRecorder()
			h.Callback(rec, tt.req)
			assert.Equal(t, tt.code, rec.Code)
			assert.Empty(t, shops)
		})
	}
}

func TestSplitScopes(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitScopes(" a, ,b "))
	assert.Nil(t, splitScopes(""))
}
