package shopify

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidSessionToken = errors.New("shopify: invalid session token")

type SessionTokenClaims struct {
	jwt.RegisteredClaims

	// Shopify uses custom claims; we only rely on a few.
	Dest string `json:"dest,omitempty"` // e.g. https://{shop}
	Sid  string `json:"sid,omitempty"`
}

type VerifiedSession struct {
	ShopDomain string
	UserID     string
	SessionID  string
	ExpiresAt  time.Time
}

// BearerToken extracts the JWT from an "Authorization: Bearer" header.
func BearerToken(h http.Header) (string, bool) {
	authz := strings.TrimSpace(h.Get("Authorization"))
	if len(authz) < 7 || !strings.EqualFold(authz[:7], "bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(authz[7:])
	return tok, tok != ""
}

// VerifySessionToken verifies an embedded app session token (JWT, HS256) using the app API secret.
// It returns the myshopify domain derived from dest/issuer after validation.
// Every failure wraps ErrInvalidSessionToken.
func VerifySessionToken(tokenString string, apiKey string, apiSecret string, now time.Time) (*VerifiedSession, error) {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidSessionToken, fmt.Sprintf(format, args...))
	}
	if tokenString == "" {
		return nil, invalid("missing token")
	}
	if apiSecret == "" {
		return nil, invalid("missing api secret")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	claims := &SessionTokenClaims{}
	tok, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(apiSecret), nil
	})
	if err != nil {
		return nil, invalid("%v", err)
	}
	if !tok.Valid {
		return nil, invalid("invalid token")
	}

	// Audience validation (should include apiKey)
	if apiKey != "" && !audContains(claims.Audience, apiKey) {
		return nil, invalid("audience mismatch")
	}

	shopDomain, err := NormalizeShopDomain(shopFromClaims(claims))
	if err != nil {
		return nil, invalid("missing shop in token")
	}

	return &VerifiedSession{
		ShopDomain: shopDomain,
		UserID:     claims.Subject,
		SessionID:  claims.Sid,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}

func audContains(aud []string, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}

// shopFromClaims prefers dest and falls back to the issuer, which is the
// shop admin URL.
func shopFromClaims(c *SessionTokenClaims) string {
	if s := strings.TrimSpace(c.Dest); s != "" {
		return s
	}
	return strings.TrimSpace(c.Issuer)
}
