package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type OAuthExchanger struct {
	HTTPClient *http.Client
	APIKey     string
	APISecret  string
	// BaseURL replaces https://{shop} when set.
	BaseURL string
}

// AccessToken is the result of a code exchange.
type AccessToken struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}

// Scopes splits the granted scope list.
func (t AccessToken) Scopes() []string {
	var out []string
	for _, s := range strings.Split(t.Scope, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// AuthorizeURL is where the merchant approves the install.
func (o OAuthExchanger) AuthorizeURL(shopDomain, redirectURL, state string, scopes []string) string {
	u := url.URL{
		Scheme: "https",
		Host:   shopDomain,
		Path:   "/admin/oauth/authorize",
	}
	q := u.Query()
	q.Set("client_id", o.APIKey)
	q.Set("scope", strings.Join(scopes, ","))
	q.Set("redirect_uri", redirectURL)
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String()
}

func (o OAuthExchanger) ExchangeCodeForToken(ctx context.Context, shopDomain, code string) (AccessToken, error) {
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}

	body, _ := json.Marshal(map[string]string{
		"client_id":     o.APIKey,
		"client_secret": o.APISecret,
		"code":          code,
	})

	base := "https://" + shopDomain
	if o.BaseURL != "" {
		base = strings.TrimSuffix(o.BaseURL, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/admin/oauth/access_token", bytes.NewReader(body))
	if err != nil {
		return AccessToken{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return AccessToken{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return AccessToken{}, fmt.Errorf("shopify token exchange failed: status=%d", resp.StatusCode)
	}

	var r AccessToken
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return AccessToken{}, err
	}
	if r.AccessToken == "" {
		return AccessToken{}, fmt.Errorf("shopify token exchange returned empty access_token")
	}
	return r, nil
}
