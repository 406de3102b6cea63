// Package fakeshop is an in-memory Shopify Admin REST API. It serves the
// paths the built-in kinds use, versioned or not, and records every request.
package fakeshop

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"shopifyapi/pkg/shopify/api"
)

// Request is one request the server received. Body is the decoded JSON.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   any
}

type owner struct {
	collection string
	id         string
}

// Server holds the fake shop's records. The zero value is not usable; use
// New.
type Server struct {
	// Token, when set, must be sent as X-Shopify-Access-Token.
	Token string
	// DeprecatedReason, when set, is returned as
	// X-Shopify-API-Deprecated-Reason on every response.
	DeprecatedReason string

	logger *slog.Logger

	mu       sync.Mutex
	nextID   int64
	shop     map[string]any
	records  map[string]map[string]map[string]any
	owners   map[string]map[string]owner
	requests []Request
	now      func() time.Time
}

func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		logger:  logger,
		nextID:  1000,
		shop:    map[string]any{"id": json.Number("1"), "name": "Fake Shop", "myshopify_domain": "fake.myshopify.com", "currency": "USD"},
		records: map[string]map[string]map[string]any{},
		owners:  map[string]map[string]owner{},
		now:     time.Now,
	}
}

// Handler routes /admin/... and /admin/api/{version}/....
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authorize)
		r.Route("/admin", s.adminRoutes)
		r.Route("/admin/api/{version}", s.adminRoutes)
	})
	return r
}

func (s *Server) adminRoutes(r chi.Router) {
	r.Get("/shop.json", s.getShop)

	r.Get("/{collection}.json", s.list)
	r.Post("/{collection}.json", s.create)
	r.Get("/{collection}/count.json", s.count)
	r.Get("/{collection}/{id}.json", s.show)
	r.Put("/{collection}/{id}.json", s.update)
	r.Delete("/{collection}/{id}.json", s.remove)

	// Three segments are either a nested collection or a member action.
	r.Get("/{parent}/{pid}/{collection}.json", s.list)
	r.Post("/{parent}/{pid}/{collection}.json", s.createOrAction)
	r.Get("/{parent}/{pid}/{collection}/count.json", s.count)
	r.Get("/{parent}/{pid}/{collection}/{id}.json", s.show)
	r.Put("/{parent}/{pid}/{collection}/{id}.json", s.update)
	r.Delete("/{parent}/{pid}/{collection}/{id}.json", s.remove)
}

// Seed stores obj in collection, assigning an id when it has none, and
// returns the stored copy.
func (s *Server) Seed(collection string, obj map[string]any) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.put(collection, obj, nil))
}

// SeedNested stores obj in collection owned by parent/pid.
func (s *Server) SeedNested(parent, pid, collection string, obj map[string]any) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.put(collection, obj, &owner{collection: parent, id: pid}))
}

// SetShop replaces the shop payload.
func (s *Server) SetShop(obj map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shop = clone(obj)
}

// Get returns a stored record.
func (s *Server) Get(collection, id string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.records[collection][id]
	return clone(obj), ok
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Reset forgets recorded requests.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body any
		if r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			if len(bytes.TrimSpace(raw)) > 0 {
				dec := json.NewDecoder(bytes.NewReader(raw))
				dec.UseNumber()
				_ = dec.Decode(&body)
			}
			r.Body = io.NopCloser(bytes.NewReader(raw))
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()

		if s.DeprecatedReason != "" {
			w.Header().Set("X-Shopify-API-Deprecated-Reason", s.DeprecatedReason)
		}
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("fakeshop request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Token != "" && r.Header.Get("X-Shopify-Access-Token") != s.Token {
			writeErrors(w, http.StatusUnauthorized, "[API] Invalid API key or access token (unrecognized login or wrong password)")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) getShop(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	shop := clone(s.shop)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"shop": selectFields(shop, r.URL.Query())})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	items := s.matching(collection, scopeOf(r), r.URL.Query())
	for i, it := range items {
		items[i] = selectFields(it, r.URL.Query())
	}
	writeJSON(w, http.StatusOK, map[string]any{collection: items})
}

func (s *Server) count(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	items := s.matching(collection, scopeOf(r), r.URL.Query())
	writeJSON(w, http.StatusOK, map[string]any{"count": len(items)})
}

func (s *Server) show(w http.ResponseWriter, r *http.Request) {
	collection, id := chi.URLParam(r, "collection"), chi.URLParam(r, "id")
	s.mu.Lock()
	obj, ok := s.records[collection][id]
	ok = ok && s.ownedBy(collection, id, scopeOf(r))
	obj = clone(obj)
	s.mu.Unlock()
	if !ok {
		writeErrors(w, http.StatusNotFound, "Not Found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{singular(collection): selectFields(obj, r.URL.Query())})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	s.createIn(w, r, chi.URLParam(r, "collection"), nil)
}

func (s *Server) createOrAction(w http.ResponseWriter, r *http.Request) {
	parent, pid, last := chi.URLParam(r, "parent"), chi.URLParam(r, "pid"), chi.URLParam(r, "collection")
	if parent == "discounts" && (last == "enable" || last == "disable") {
		s.discountStatus(w, pid, last+"d")
		return
	}
	s.createIn(w, r, last, &owner{collection: parent, id: pid})
}

func (s *Server) createIn(w http.ResponseWriter, r *http.Request, collection string, o *owner) {
	attrs, ok := payload(r, singular(collection))
	if !ok {
		writeErrors(w, http.StatusBadRequest, "Required parameter missing or invalid: "+singular(collection))
		return
	}
	if collection == "variants" && o == nil {
		writeErrors(w, http.StatusNotFound, "Not Found")
		return
	}
	s.mu.Lock()
	ts := s.now().UTC().Format(time.RFC3339)
	attrs["created_at"], attrs["updated_at"] = ts, ts
	delete(attrs, "id")
	obj := clone(s.put(collection, attrs, o))
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{singular(collection): obj})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	collection, id := chi.URLParam(r, "collection"), chi.URLParam(r, "id")
	attrs, ok := payload(r, singular(collection))
	if !ok {
		writeErrors(w, http.StatusBadRequest, "Required parameter missing or invalid: "+singular(collection))
		return
	}
	s.mu.Lock()
	obj, found := s.records[collection][id]
	if !found || !s.ownedBy(collection, id, scopeOf(r)) {
		s.mu.Unlock()
		writeErrors(w, http.StatusNotFound, "Not Found")
		return
	}
	for k, v := range attrs {
		if k == "id" {
			continue
		}
		obj[k] = v
	}
	obj["updated_at"] = s.now().UTC().Format(time.RFC3339)
	out := clone(obj)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{singular(collection): out})
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	collection, id := chi.URLParam(r, "collection"), chi.URLParam(r, "id")
	s.mu.Lock()
	_, found := s.records[collection][id]
	if found && s.ownedBy(collection, id, scopeOf(r)) {
		delete(s.records[collection], id)
		delete(s.owners[collection], id)
	} else {
		found = false
	}
	s.mu.Unlock()
	if !found {
		writeErrors(w, http.StatusNotFound, "Not Found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) discountStatus(w http.ResponseWriter, id, status string) {
	s.mu.Lock()
	obj, ok := s.records["discounts"][id]
	if ok {
		obj["status"] = status
		obj = clone(obj)
	}
	s.mu.Unlock()
	if !ok {
		writeErrors(w, http.StatusNotFound, "Not Found")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"discount": obj})
}

// put stores obj; callers hold s.mu.
func (s *Server) put(collection string, obj map[string]any, o *owner) map[string]any {
	obj = clone(obj)
	if obj == nil {
		obj = map[string]any{}
	}
	id := idString(obj["id"])
	if id == "" {
		s.nextID++
		id = strconv.FormatInt(s.nextID, 10)
	}
	obj["id"] = json.Number(id)
	if o != nil {
		switch collection {
		case "metafields":
			obj["owner_resource"] = singular(o.collection)
			obj["owner_id"] = json.Number(o.id)
		case "variants":
			obj["product_id"] = json.Number(o.id)
		}
		if s.owners[collection] == nil {
			s.owners[collection] = map[string]owner{}
		}
		s.owners[collection][id] = *o
	}
	if s.records[collection] == nil {
		s.records[collection] = map[string]map[string]any{}
	}
	s.records[collection][id] = obj
	return obj
}

func (s *Server) matching(collection string, scope *owner, q url.Values) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id := range s.records[collection] {
		if s.ownedBy(collection, id, scope) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.ParseInt(ids[i], 10, 64)
		b, _ := strconv.ParseInt(ids[j], 10, 64)
		return a < b
	})
	if want := q.Get("ids"); want != "" {
		keep := map[string]bool{}
		for _, id := range strings.Split(want, ",") {
			keep[strings.TrimSpace(id)] = true
		}
		filtered := ids[:0]
		for _, id := range ids {
			if keep[id] {
				filtered = append(filtered, id)
			}
		}
		ids = filtered
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit >= 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, clone(s.records[collection][id]))
	}
	return out
}

// ownedBy reports whether the record is visible under scope; everything
// is visible unscoped. Callers hold s.mu.
func (s *Server) ownedBy(collection, id string, scope *owner) bool {
	if scope == nil {
		return true
	}
	o, ok := s.owners[collection][id]
	return ok && o == *scope
}

func scopeOf(r *http.Request) *owner {
	parent := chi.URLParam(r, "parent")
	if parent == "" {
		return nil
	}
	return &owner{collection: parent, id: chi.URLParam(r, "pid")}
}

func payload(r *http.Request, wrap string) (map[string]any, bool) {
	var body map[string]any
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, false
	}
	attrs, ok := body[wrap].(map[string]any)
	return attrs, ok
}

func selectFields(obj map[string]any, q url.Values) map[string]any {
	fields := q.Get("fields")
	if fields == "" {
		return obj
	}
	out := map[string]any{}
	for _, f := range strings.Split(fields, ",") {
		f = strings.TrimSpace(f)
		if v, ok := obj[f]; ok {
			out[f] = v
		}
	}
	return out
}

func singular(collection string) string {
	return strings.TrimSuffix(collection, "s")
}

func idString(v any) string {
	switch x := v.(type) {
	case json.Number:
		return x.String()
	case string:
		return x
	case float64:
		return strconv.FormatInt(int64(x), 10)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	}
	return ""
}

func clone(m map[string]any) map[string]any { return api.CloneMap(m) }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrors(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"errors": msg})
}
