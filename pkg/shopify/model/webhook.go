package model

import (
	"context"

	"shopifyapi/pkg/shopify/api"
)

// Webhook is a webhook subscription.
type Webhook struct{ *Record }

var Webhooks = NewKind(api.KindWebhook, func(r *Record) *Webhook { return &Webhook{Record: r} })

func (w *Webhook) Topic() string { return w.String("topic") }

func (w *Webhook) SetTopic(topic string) *Webhook {
	w.SetOriginal("topic", topic)
	return w
}

func (w *Webhook) Address() string { return w.String("address") }

func (w *Webhook) SetAddress(address string) *Webhook {
	w.SetOriginal("address", address)
	return w
}

// Format defaults to json when unset.
func (w *Webhook) Format() string {
	if f := w.String("format"); f != "" {
		return f
	}
	return "json"
}

// Delete is Remove.
func (w *Webhook) Delete(ctx context.Context) error { return w.Remove(ctx) }
