// Package httpapi wires the app server routes.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shopifyapi/internal/api"
	"shopifyapi/internal/auth"
	"shopifyapi/internal/webhook"
	"shopifyapi/pkg/config"
	"shopifyapi/pkg/shopify"
)

// ShopStore is what the app server needs from the shops table.
type ShopStore interface {
	api.ShopStore
	auth.ShopWriter
	webhook.ShopRemover
}

type Dependencies struct {
	Cfg    config.Config
	Shops  ShopStore
	Events webhook.EventStore
	// Options configure the Admin API clients built per request.
	Options   shopify.Options
	Exchanger shopify.OAuthExchanger
	Logger    *slog.Logger
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	authHandlers := auth.Handlers{
		Cfg:       deps.Cfg,
		Shops:     deps.Shops,
		Exchanger: deps.Exchanger,
		Options:   deps.Options,
		Logger:    deps.Logger,
	}
	webhookHandler := webhook.Handler{
		Secret: deps.Cfg.Shopify.WebhookSecret,
		Shops:  deps.Shops,
		Events: deps.Events,
		Logger: deps.Logger,
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/auth/install", authHandlers.Install)
		r.Get("/auth/callback", authHandlers.Callback)

		r.Post("/webhooks/shopify/{topic}", webhookHandler.ServeHTTP)

		// Shop-scoped reads and metafield writes through the Admin API.
		r.Group(func(r chi.Router) {
			r.Use(api.SessionAuth(deps.Cfg, deps.Shops, deps.Options, deps.Logger))

			r.Get("/shop", getShop)
			r.Get("/resources/{kind}", listResources)
			r.Get("/resources/{kind}/count", countResources)
			r.Get("/resources/{kind}/{id}", getResource)
			r.Get("/resources/{kind}/{id}/metafields", listMetafields)
			r.Put("/resources/{kind}/{id}/metafields/{namespace}/{key}", putMetafield)
			r.Delete("/resources/{kind}/{id}/metafields/{namespace}/{key}", deleteMetafield)
		})
	})

	return r
}
