package shopify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"shopifyapi/pkg/shopify/api"
	"shopifyapi/pkg/shopify/model"
)

// Options configure the HTTP client behind a Manager.
type Options struct {
	APIVersion string
	UserAgent  string
	Timeout    time.Duration
	Strict     bool
	// BaseURL points the client somewhere other than the shop host.
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// TokenSource looks up the access token stored for an installed shop.
type TokenSource interface {
	TokenFor(ctx context.Context, shopDomain string) (string, error)
}

// CacheFunc returns a cached payload for id, or false to go to the api.
type CacheFunc func(id api.ID) (map[string]any, bool)

// Manager is the entry point for one shop: typed lookups for every
// built-in kind over a shared registry.
type Manager struct {
	reg    *api.Registry
	domain string

	mu    sync.RWMutex
	cache map[string]CacheFunc
}

// NewManager wraps an existing transport.
func NewManager(t api.Transport, opts ...api.Option) *Manager {
	return &Manager{reg: api.NewRegistry(t, opts...), cache: map[string]CacheFunc{}}
}

// Init builds a Manager talking HTTP to shop with token. shop may be the
// bare shop name, its myshopify domain or a URL.
func Init(shop, token string, o Options) (*Manager, error) {
	domain, err := NormalizeShopDomain(shop)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("missing access token for %s", domain)
	}
	httpClient := o.HTTPClient
	if httpClient == nil {
		timeout := o.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	c := Client{
		HTTPClient:  httpClient,
		ShopDomain:  domain,
		BaseURL:     o.BaseURL,
		AccessToken: token,
		APIVersion:  o.APIVersion,
		UserAgent:   o.UserAgent,
		Logger:      o.Logger,
	}
	m := NewManager(c, api.WithStrict(o.Strict))
	m.domain = domain
	return m, nil
}

// ForShop builds a Manager from the credential src holds for shop.
func ForShop(ctx context.Context, src TokenSource, shop string, o Options) (*Manager, error) {
	domain, err := NormalizeShopDomain(shop)
	if err != nil {
		return nil, err
	}
	token, err := src.TokenFor(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("load token for %s: %w", domain, err)
	}
	return Init(domain, token, o)
}

var shopNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// NormalizeShopDomain turns "name", "name.myshopify.com" or
// "https://name.myshopify.com/admin" into "name.myshopify.com".
func NormalizeShopDomain(shop string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(shop))
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return "", fmt.Errorf("invalid shop %q: %w", shop, err)
		}
		s = u.Host
	}
	s = strings.TrimSuffix(s, "/")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	name := strings.TrimSuffix(s, ".myshopify.com")
	if !shopNameRe.MatchString(name) {
		return "", fmt.Errorf("invalid shop %q", shop)
	}
	return name + ".myshopify.com", nil
}

// Domain is the myshopify domain, empty for managers over a custom
// transport.
func (m *Manager) Domain() string { return m.domain }

// URL is https://{Domain}.
func (m *Manager) URL() string {
	if m.domain == "" {
		return ""
	}
	return "https://" + m.domain
}

func (m *Manager) Registry() *api.Registry { return m.reg }

// SetCache installs fn as the lookup consulted before the api for single
// records of kind. A nil fn removes it.
func (m *Manager) SetCache(kind string, fn CacheFunc) error {
	d, ok := m.reg.Descriptor(kind)
	if !ok {
		return &api.UnknownKindError{Name: kind}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if fn == nil {
		delete(m.cache, d.Kind)
		return nil
	}
	m.cache[d.Kind] = fn
	return nil
}

func (m *Manager) cached(kind string, id api.ID) (map[string]any, bool) {
	m.mu.RLock()
	fn := m.cache[kind]
	m.mu.RUnlock()
	if fn == nil {
		return nil, false
	}
	return fn(id)
}

func find[T model.Model](ctx context.Context, m *Manager, k model.Kind[T], id api.ID) (T, error) {
	if data, ok := m.cached(k.Name, id); ok {
		return k.From(m.reg, data)
	}
	return k.Find(ctx, m.reg, id)
}

// Get loads a record of any registered kind by name.
func (m *Manager) Get(ctx context.Context, kind string, id api.ID) (*model.Record, error) {
	d, ok := m.reg.Descriptor(kind)
	if !ok {
		return nil, &api.UnknownKindError{Name: kind}
	}
	return find(ctx, m, model.Records(d.Kind), id)
}

// List loads every record of any registered kind by name.
func (m *Manager) List(ctx context.Context, kind string, params url.Values) ([]*model.Record, error) {
	return model.Records(kind).All(ctx, m.reg, params)
}

// Count counts records of any registered kind by name.
func (m *Manager) Count(ctx context.Context, kind string, params url.Values) (int, error) {
	return model.Records(kind).Count(ctx, m.reg, params)
}

// Shop loads the shop the credentials belong to.
func (m *Manager) Shop(ctx context.Context) (*model.Shop, error) {
	return model.CurrentShop(ctx, m.reg)
}

func (m *Manager) Product(ctx context.Context, id api.ID) (*model.Product, error) {
	return find(ctx, m, model.Products, id)
}

func (m *Manager) AllProducts(ctx context.Context, params url.Values) ([]*model.Product, error) {
	return model.Products.All(ctx, m.reg, params)
}

func (m *Manager) Order(ctx context.Context, id api.ID) (*model.Order, error) {
	return find(ctx, m, model.Orders, id)
}

func (m *Manager) AllOrders(ctx context.Context, params url.Values) ([]*model.Order, error) {
	return model.Orders.All(ctx, m.reg, params)
}

func (m *Manager) Webhook(ctx context.Context, id api.ID) (*model.Webhook, error) {
	return find(ctx, m, model.Webhooks, id)
}

func (m *Manager) AllWebhooks(ctx context.Context, params url.Values) ([]*model.Webhook, error) {
	return model.Webhooks.All(ctx, m.reg, params)
}

func (m *Manager) Variant(ctx context.Context, id api.ID) (*model.Variant, error) {
	return find(ctx, m, model.Variants, id)
}

// AllVariants lists the variants of one product.
func (m *Manager) AllVariants(ctx context.Context, productID api.ID, params url.Values) ([]*model.Variant, error) {
	p, err := model.Products.From(m.reg, map[string]any{"id": productID.String()})
	if err != nil {
		return nil, err
	}
	return p.Variants().List(ctx, params)
}

func (m *Manager) Metafield(ctx context.Context, id api.ID) (*model.Metafield, error) {
	return find(ctx, m, model.Metafields, id)
}

func (m *Manager) Discount(ctx context.Context, id api.ID) (*model.Discount, error) {
	return find(ctx, m, model.Discounts, id)
}

func (m *Manager) AllDiscounts(ctx context.Context, params url.Values) ([]*model.Discount, error) {
	return model.Discounts.All(ctx, m.reg, params)
}

func (m *Manager) CustomCollection(ctx context.Context, id api.ID) (*model.CustomCollection, error) {
	return find(ctx, m, model.CustomCollections, id)
}

func (m *Manager) AllCustomCollections(ctx context.Context, params url.Values) ([]*model.CustomCollection, error) {
	return model.CustomCollections.All(ctx, m.reg, params)
}
