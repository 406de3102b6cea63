package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shopifyapi/internal/api"
	sapi "shopifyapi/pkg/shopify/api"
	"shopifyapi/pkg/shopify/model"
)

func getShop(w http.ResponseWriter, r *http.Request) {
	sess := api.SessionFromContext(r.Context())
	s, err := sess.Manager.Shop(r.Context())
	if err != nil {
		writeShopifyError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"shop": s.Data()})
}

func listResources(w http.ResponseWriter, r *http.Request) {
	sess := api.SessionFromContext(r.Context())
	rs, err := sess.Manager.List(r.Context(), chi.URLParam(r, "kind"), r.URL.Query())
	if err != nil {
		writeShopifyError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(rs))
	for _, rec := range rs {
		out = append(out, rec.Data())
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": out})
}

func countResources(w http.ResponseWriter, r *http.Request) {
	sess := api.SessionFromContext(r.Context())
	n, err := sess.Manager.Count(r.Context(), chi.URLParam(r, "kind"), r.URL.Query())
	if err != nil {
		writeShopifyError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"count": n})
}

func getResource(w http.ResponseWriter, r *http.Request) {
	sess := api.SessionFromContext(r.Context())
	rec, err := sess.Manager.Get(r.Context(), chi.URLParam(r, "kind"), sapi.ID(chi.URLParam(r, "id")))
	if err != nil {
		writeShopifyError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"item": rec.Data()})
}

func listMetafields(w http.ResponseWriter, r *http.Request) {
	set, ok := metafieldSet(w, r)
	if !ok {
		return
	}
	mfs, err := set.List(r.Context(), r.URL.Query())
	if err != nil {
		writeShopifyError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(mfs))
	for _, mf := range mfs {
		out = append(out, mf.Data())
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"metafields": out})
}

// putMetafield upserts the metafield from a {"value", "value_type"} body;
// an empty value deletes it.
func putMetafield(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value     any    `json:"value"`
		ValueType string `json:"value_type"`
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid body")
		return
	}
	set, ok := metafieldSet(w, r)
	if !ok {
		return
	}

	attrs := map[string]any{"value": body.Value}
	if body.ValueType != "" {
		attrs["value_type"] = body.ValueType
	}
	mf, changed, err := set.UpsertOrDelete(r.Context(), chi.URLParam(r, "key"), chi.URLParam(r, "namespace"), attrs)
	if err != nil {
		writeShopifyError(w, err)
		return
	}
	if mf == nil {
		api.WriteJSON(w, http.StatusOK, map[string]any{"deleted": changed})
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"metafield": mf.Data()})
}

func deleteMetafield(w http.ResponseWriter, r *http.Request) {
	set, ok := metafieldSet(w, r)
	if !ok {
		return
	}
	if err := set.Delete(r.Context(), chi.URLParam(r, "key"), chi.URLParam(r, "namespace")); err != nil {
		writeShopifyError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func metafieldSet(w http.ResponseWriter, r *http.Request) (model.MetafieldSet, bool) {
	sess := api.SessionFromContext(r.Context())
	set, err := model.MetafieldsOf(sess.Manager.Registry(), chi.URLParam(r, "kind"), sapi.ID(chi.URLParam(r, "id")))
	if err != nil {
		writeShopifyError(w, err)
		return model.MetafieldSet{}, false
	}
	return set, true
}

// writeShopifyError maps client errors onto responses. Shopify 4xx
// statuses pass through; anything else from the transport is a 502.
func writeShopifyError(w http.ResponseWriter, err error) {
	var te *sapi.TransportError
	switch {
	case errors.Is(err, sapi.ErrUnknownKind):
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, sapi.ErrUnsupportedOperation), errors.Is(err, sapi.ErrInvalidField):
		api.WriteError(w, http.StatusBadRequest, "UNSUPPORTED", err.Error())
	case errors.As(err, &te) && te.StatusCode >= 400 && te.StatusCode < 500:
		api.WriteError(w, te.StatusCode, "SHOPIFY_ERROR", err.Error())
	default:
		api.WriteError(w, http.StatusBadGateway, "SHOPIFY_ERROR", err.Error())
	}
}
