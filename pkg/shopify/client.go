// Package shopify talks to the Shopify Admin REST API: an HTTP transport
// for the api package, a Manager facade over the built-in kinds, and the
// app-side auth helpers (OAuth, webhook and session token verification).
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"shopifyapi/pkg/shopify/api"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "shopifyapi-go"
)

// Client is an api.Transport over HTTP for one shop.
type Client struct {
	HTTPClient *http.Client
	// ShopDomain is the myshopify host, e.g. my-shop.myshopify.com.
	ShopDomain string
	// BaseURL replaces https://{ShopDomain} when set, e.g. for a fake shop.
	BaseURL     string
	AccessToken string
	// APIVersion rewrites /admin/x.json to /admin/api/{APIVersion}/x.json.
	// Paths are sent as is when empty.
	APIVersion string
	UserAgent  string
	Logger     *slog.Logger
}

var _ api.Transport = Client{}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Do sends req and decodes the JSON response. Numbers decode as
// json.Number. Every failure is an *api.TransportError.
func (c Client) Do(ctx context.Context, req api.Request) (any, error) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if c.Logger == nil {
		c.Logger = discardLogger
	}
	path := versionedPath(req.Path, c.APIVersion)
	fail := func(status int, body string, err error) error {
		return &api.TransportError{Method: req.Method, Path: path, StatusCode: status, Body: body, Err: err}
	}

	base, err := c.baseURL()
	if err != nil {
		return nil, fail(0, "", err)
	}

	var buf bytes.Buffer
	if req.Body != nil {
		if err := json.NewEncoder(&buf).Encode(req.Body); err != nil {
			return nil, fail(0, "", err)
		}
	}

	u := base + path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, &buf)
	if err != nil {
		return nil, fail(0, "", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Shopify-Access-Token", c.AccessToken)
	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	httpReq.Header.Set("User-Agent", ua)

	start := time.Now()
	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fail(0, "", err)
	}
	defer resp.Body.Close()

	b, readErr := io.ReadAll(resp.Body)
	c.Logger.Debug("shopify request",
		"method", req.Method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	c.warnDeprecated(req.Method, path, resp.Header)
	if readErr != nil {
		return nil, fail(resp.StatusCode, "", readErr)
	}

	// Surface Shopify error body for non-2xx, so callers can see missing scopes, etc.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fail(resp.StatusCode, string(b), nil)
	}

	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fail(resp.StatusCode, string(b), fmt.Errorf("decode shopify response: %w", err))
	}
	return out, nil
}

func (c Client) baseURL() (string, error) {
	if c.BaseURL != "" {
		return strings.TrimSuffix(c.BaseURL, "/"), nil
	}
	if c.ShopDomain == "" || c.AccessToken == "" {
		return "", fmt.Errorf("missing shop domain or access token")
	}
	return "https://" + c.ShopDomain, nil
}

func (c Client) warnDeprecated(method, path string, h http.Header) {
	reason := h.Get("X-Shopify-API-Deprecated-Reason")
	warning := h.Get("X-Shopify-Api-Version-Warning")
	if reason == "" && warning == "" {
		return
	}
	c.Logger.Warn("shopify api deprecation notice",
		"method", method,
		"path", path,
		"api_version", c.APIVersion,
		"reason", reason,
		"version_warning", warning,
	)
}

// versionedPath inserts api/{version} after /admin/ unless the path is
// already versioned.
func versionedPath(path, version string) string {
	if version == "" {
		return path
	}
	rest, ok := strings.CutPrefix(path, "/admin/")
	if !ok || strings.HasPrefix(rest, "api/") {
		return path
	}
	return "/admin/api/" + version + "/" + rest
}
