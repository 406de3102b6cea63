package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"shopifyapi/internal/shop"
	"shopifyapi/pkg/config"
	"shopifyapi/pkg/shopify"
)

// ShopStore is the part of shop.Repository the session middleware needs.
type ShopStore interface {
	FindByDomain(ctx context.Context, domain string) (*shop.Shop, error)
	Upsert(ctx context.Context, domain, accessToken, scopes string) (*shop.Shop, error)
}

// SessionAuth authenticates shop-scoped requests and attaches a Session
// with a Manager for the shop.
//
// Expected header:
// - Authorization: Bearer <session token JWT>
//
// Outside prod a request without a valid token may name the shop with
// X-Shop-Domain instead. Either way a shop that is not yet stored is
// registered when the caller sends X-Shopify-Access-Token.
func SessionAuth(cfg config.Config, shops ShopStore, opts shopify.Options, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var domain, user string
			if raw, ok := shopify.BearerToken(r.Header); ok {
				vs, err := shopify.VerifySessionToken(raw, cfg.Shopify.APIKey, cfg.Shopify.APISecret, time.Now())
				if err == nil {
					domain, user = vs.ShopDomain, vs.UserID
				} else {
					logger.Debug("session token rejected", "err", err)
				}
			}
			if domain == "" && cfg.AppEnv != "prod" {
				domain = strings.TrimSpace(r.Header.Get("X-Shop-Domain"))
			}
			if domain == "" {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid session token")
				return
			}

			s, err := loadShop(r, shops, domain)
			if err != nil {
				if errors.Is(err, shop.ErrNotFound) {
					WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unknown shop")
					return
				}
				logger.Error("load shop", "shop", domain, "err", err)
				WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to load shop")
				return
			}
			if s.Status != "active" {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "shop is not active")
				return
			}

			m, err := shopify.Init(s.Domain, s.AccessToken, opts)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
				return
			}
			sess := &Session{Shop: s, UserID: user, Manager: m}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// loadShop finds the stored shop, registering or refreshing its token when
// the request carries one.
func loadShop(r *http.Request, shops ShopStore, domain string) (*shop.Shop, error) {
	domain, err := shopify.NormalizeShopDomain(domain)
	if err != nil {
		return nil, shop.ErrNotFound
	}
	accessToken := strings.TrimSpace(r.Header.Get("X-Shopify-Access-Token"))

	s, err := shops.FindByDomain(r.Context(), domain)
	switch {
	case errors.Is(err, shop.ErrNotFound) && accessToken != "":
		return shops.Upsert(r.Context(), domain, accessToken, "")
	case err != nil:
		return nil, err
	case accessToken != "" && accessToken != s.AccessToken:
		return shops.Upsert(r.Context(), domain, accessToken, s.Scopes)
	}
	return s, nil
}
