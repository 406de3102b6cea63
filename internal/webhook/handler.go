// Package webhook receives Shopify webhook deliveries.
package webhook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"shopifyapi/internal/api"
	"shopifyapi/internal/shop"
	"shopifyapi/pkg/shopify"
)

// Event is one verified delivery.
type Event struct {
	ShopDomain  string
	Topic       string // normalized, e.g. app_uninstalled
	ID          string
	PayloadHash string
	Body        []byte
}

// EventStore remembers processed deliveries. Record reports false when the
// event was seen before.
type EventStore interface {
	Record(ctx context.Context, e Event) (bool, error)
}

// ShopRemover forgets the credential of an uninstalled shop.
type ShopRemover interface {
	DeleteByDomain(ctx context.Context, domain string) error
}

type Handler struct {
	Secret string
	Shops  ShopRemover
	// Events is optional; without it deliveries are not deduplicated.
	Events EventStore
	// OnEvent, when set, is called for every new event after the built-in
	// handling.
	OnEvent func(ctx context.Context, e Event) error
	Logger  *slog.Logger
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	// Prefer Shopify's topic header; fall back to route param.
	topic := strings.TrimSpace(r.Header.Get("X-Shopify-Topic"))
	if topic == "" {
		topic = chi.URLParam(r, "topic")
	}
	topic = shopify.NormalizeTopic(topic)

	hmacHeader := strings.TrimSpace(r.Header.Get("X-Shopify-Hmac-Sha256"))
	eventID := strings.TrimSpace(r.Header.Get("X-Shopify-Webhook-Id"))
	if eventID == "" {
		eventID = strings.TrimSpace(r.Header.Get("X-Shopify-Event-Id"))
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid body")
		return
	}

	if !shopify.VerifyWebhook(body, hmacHeader, h.Secret) {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid webhook signature")
		return
	}

	shopDomain, err := shopify.NormalizeShopDomain(r.Header.Get("X-Shopify-Shop-Domain"))
	if err != nil {
		// Always return 200 to Shopify for unknown shops (avoid retries).
		log.Warn("webhook without shop", "topic", topic)
		w.WriteHeader(http.StatusOK)
		return
	}

	e := Event{ShopDomain: shopDomain, Topic: topic, ID: eventID, PayloadHash: sha256Hex(body), Body: body}
	if e.ID == "" {
		// Fallback idempotency key when webhook-id header isn't present.
		e.ID = e.PayloadHash
	}
	log = log.With("shop", shopDomain, "topic", topic, "event_id", e.ID)

	if err := h.handle(r.Context(), e, log); err != nil {
		log.Error("webhook handling failed", "err", err)
	}

	// Shopify expects a 200 quickly.
	w.WriteHeader(http.StatusOK)
}

func (h Handler) handle(ctx context.Context, e Event, log *slog.Logger) error {
	if h.Events != nil {
		fresh, err := h.Events.Record(ctx, e)
		if err != nil {
			return err
		}
		if !fresh {
			log.Debug("webhook already processed")
			return nil
		}
	}

	switch e.Topic {
	case shopify.NormalizeTopic(shopify.TopicAppUninstalled):
		if err := h.Shops.DeleteByDomain(ctx, e.ShopDomain); err != nil && !errors.Is(err, shop.ErrNotFound) {
			return err
		}
		log.Info("shop uninstalled")
	default:
		// Unknown topic: accept (no retries).
		log.Debug("webhook received")
	}

	if h.OnEvent != nil {
		return h.OnEvent(ctx, e)
	}
	return nil
}

func sha256Hex(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}
