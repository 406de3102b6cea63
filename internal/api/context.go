package api

import (
	"context"

	"shopifyapi/internal/shop"
	"shopifyapi/pkg/shopify"
)

// Session is the authenticated caller of a shop-scoped request.
type Session struct {
	Shop *shop.Shop
	// UserID is the staff member from the session token, empty on the dev
	// fallback.
	UserID  string
	Manager *shopify.Manager
}

type ctxKey string

const ctxKeySession ctxKey = "session"

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKeySession, s)
}

func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKeySession).(*Session)
	return s
}
