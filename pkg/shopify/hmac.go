package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// VerifyWebhook verifies the webhook signature using the shared secret.
// Signature header is base64(HMAC_SHA256(body)).
func VerifyWebhook(body []byte, hmacHeader string, secret string) bool {
	if hmacHeader == "" || secret == "" {
		return false
	}
	return hmac.Equal([]byte(SignWebhook(body, secret)), []byte(hmacHeader))
}

// SignWebhook returns the X-Shopify-Hmac-Sha256 value for body.
func SignWebhook(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyOAuthHMAC verifies Shopify's OAuth callback HMAC.
// Shopify computes the HMAC over the querystring (excluding hmac and signature) in lexicographical order.
func VerifyOAuthHMAC(values url.Values, apiSecret string) bool {
	given := values.Get("hmac")
	if given == "" || apiSecret == "" {
		return false
	}
	return hmac.Equal([]byte(SignOAuthQuery(values, apiSecret)), []byte(given))
}

// SignOAuthQuery returns the hex HMAC Shopify sends for values.
func SignOAuthQuery(values url.Values, apiSecret string) string {
	var keys []string
	for k := range values {
		if k == "hmac" || k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		for _, v := range values[k] {
			parts = append(parts, k+"="+strings.ReplaceAll(v, "&", "%26"))
		}
	}
	msg := strings.Join(parts, "&")

	mac := hmac.New(sha256.New, []byte(apiSecret))
	_, _ = mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}
