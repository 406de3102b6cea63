package model

import (
	"context"
	"time"

	"shopifyapi/pkg/shopify/api"
)

// now is the clock used by Publish.
var now = time.Now

// Product is a catalogue product.
type Product struct{ *Record }

var Products = NewKind(api.KindProduct, func(r *Record) *Product { return &Product{Record: r} })

func (p *Product) Title() string { return p.String("title") }

func (p *Product) SetTitle(title string) *Product {
	p.SetOriginal("title", title)
	return p
}

func (p *Product) BodyHTML() string { return p.String("body_html") }

func (p *Product) SetBodyHTML(html string) *Product {
	p.SetOriginal("body_html", html)
	return p
}

func (p *Product) Vendor() string { return p.String("vendor") }

func (p *Product) ProductType() string { return p.String("product_type") }

func (p *Product) Handle() string { return p.String("handle") }

// Tags splits the comma separated tag list.
func (p *Product) Tags() []string { return p.tags("tags") }

func (p *Product) SetTags(tags []string) *Product {
	p.setTags("tags", tags)
	return p
}

func (p *Product) PublishedAt() (time.Time, bool) { return p.Time("published_at") }

// SetPublishedAt stores t; a zero t unpublishes on the next save.
func (p *Product) SetPublishedAt(t time.Time) *Product {
	p.SetTime("published_at", t)
	return p
}

// Published reports whether the product has a publication date and scope.
func (p *Product) Published() bool {
	return p.String("published_at") != "" && p.String("published_scope") != ""
}

// Publish stamps published_at with the current time and saves.
func (p *Product) Publish(ctx context.Context) error {
	return p.SetPublishedAt(now()).Save(ctx)
}

// Unpublish clears published_at and saves.
func (p *Product) Unpublish(ctx context.Context) error {
	return p.SetPublishedAt(time.Time{}).Save(ctx)
}

// EmbeddedVariants seeds the variants carried in the product payload
// without a network call.
func (p *Product) EmbeddedVariants() ([]*Variant, error) {
	return embedded(p.Record, "variants", Variants)
}

// Variants is the product's variants endpoint.
func (p *Product) Variants() Relation[*Variant] { return NewRelation(p, Variants) }

func (p *Product) Metafields() MetafieldSet { return metafieldsOf(p) }

// embedded seeds records of kind k from a list attribute of r.
func embedded[T Model](r *Record, attr string, k Kind[T]) ([]T, error) {
	items, _ := r.data[attr].([]any)
	maps := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			maps = append(maps, api.CloneMap(m))
		}
	}
	return k.seed(r.reg, maps, nil)
}
