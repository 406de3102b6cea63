// Package auth implements the OAuth install flow of the app.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"shopifyapi/internal/shop"
	"shopifyapi/pkg/config"
	"shopifyapi/pkg/shopify"
	"shopifyapi/pkg/shopify/model"
)

const stateCookie = "oauth_state"

// InstallTopics are subscribed to on install when a public base url is set.
var InstallTopics = []string{shopify.TopicAppUninstalled, shopify.TopicShopUpdate}

// ShopWriter stores the credential of an installed shop.
type ShopWriter interface {
	Upsert(ctx context.Context, domain, accessToken, scopes string) (*shop.Shop, error)
}

type Handlers struct {
	Cfg       config.Config
	Shops     ShopWriter
	Exchanger shopify.OAuthExchanger
	// Options configure the client that registers webhooks after install.
	Options shopify.Options
	Logger  *slog.Logger
}

func (h Handlers) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return h.Logger
}

func (h Handlers) Install(w http.ResponseWriter, r *http.Request) {
	shopDomain, err := shopify.NormalizeShopDomain(r.URL.Query().Get("shop"))
	if err != nil {
		http.Error(w, "missing or invalid shop", http.StatusBadRequest)
		return
	}

	state := randomHex(16)
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.Cfg.AppEnv == "prod",
	})

	ex := h.exchanger()
	http.Redirect(w, r, ex.AuthorizeURL(shopDomain, h.Cfg.Shopify.RedirectURL, state, splitScopes(h.Cfg.Shopify.Scopes)), http.StatusFound)
}

func (h Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	code := strings.TrimSpace(qs.Get("code"))
	shopDomain, err := shopify.NormalizeShopDomain(qs.Get("shop"))
	if err != nil || code == "" {
		http.Error(w, "missing shop or code", http.StatusBadRequest)
		return
	}

	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" || c.Value != qs.Get("state") {
		http.Error(w, "invalid oauth state", http.StatusBadRequest)
		return
	}

	if !shopify.VerifyOAuthHMAC(qs, h.Cfg.Shopify.APISecret) {
		http.Error(w, "invalid hmac", http.StatusUnauthorized)
		return
	}

	token, err := h.exchanger().ExchangeCodeForToken(r.Context(), shopDomain, code)
	if err != nil {
		http.Error(w, fmt.Sprintf("token exchange: %v", err), http.StatusBadGateway)
		return
	}

	if _, err := h.Shops.Upsert(r.Context(), shopDomain, token.AccessToken, token.Scope); err != nil {
		http.Error(w, fmt.Sprintf("save shop: %v", err), http.StatusInternalServerError)
		return
	}
	h.logger().Info("shop installed", "shop", shopDomain, "scopes", token.Scope)

	if base := strings.TrimRight(strings.TrimSpace(h.Cfg.PublicBaseURL), "/"); base != "" {
		h.registerWebhooks(r.Context(), shopDomain, token.AccessToken, base)
	}

	_, _ = w.Write([]byte("installed"))
}

// registerWebhooks subscribes the shop to InstallTopics. Failures are
// logged; the install itself has already succeeded.
func (h Handlers) registerWebhooks(ctx context.Context, shopDomain, accessToken, base string) {
	log := h.logger().With("shop", shopDomain)
	m, err := shopify.Init(shopDomain, accessToken, h.Options)
	if err != nil {
		log.Warn("webhook register skipped", "err", err)
		return
	}
	for _, topic := range InstallTopics {
		wh, err := model.Webhooks.New(m.Registry())
		if err != nil {
			log.Warn("webhook register failed", "topic", topic, "err", err)
			continue
		}
		wh.SetTopic(topic).SetAddress(base + "/v1/webhooks/shopify/" + shopify.NormalizeTopic(topic))
		wh.SetOriginal("format", "json")
		if err := wh.Save(ctx); err != nil {
			log.Warn("webhook register failed", "topic", topic, "err", err)
			continue
		}
		log.Debug("webhook registered", "topic", topic, "id", wh.ID())
	}
}

func (h Handlers) exchanger() shopify.OAuthExchanger {
	ex := h.Exchanger
	ex.APIKey = h.Cfg.Shopify.APIKey
	ex.APISecret = h.Cfg.Shopify.APISecret
	return ex
}

func splitScopes(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func randomHex(nBytes int) string {
	b := make([]byte, nBytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
