package model

import (
	"context"
	"time"

	"shopifyapi/pkg/shopify/api"
)

// CustomCollection is a manually curated product collection.
type CustomCollection struct{ *Record }

var CustomCollections = NewKind(api.KindCustomCollection, func(r *Record) *CustomCollection {
	return &CustomCollection{Record: r}
})

func (c *CustomCollection) Title() string { return c.String("title") }

func (c *CustomCollection) SetTitle(title string) *CustomCollection {
	c.SetOriginal("title", title)
	return c
}

func (c *CustomCollection) Handle() string { return c.String("handle") }

func (c *CustomCollection) SortOrder() string { return c.String("sort_order") }

func (c *CustomCollection) PublishedAt() (time.Time, bool) { return c.Time("published_at") }

// Published reports the published flag, falling back to published_at and
// published_scope for payloads that omit it.
func (c *CustomCollection) Published() bool {
	if c.Has("published") {
		return c.Bool("published")
	}
	return c.String("published_at") != "" && c.String("published_scope") != ""
}

func (c *CustomCollection) SetPublished(published bool) *CustomCollection {
	c.SetOriginal("published", published)
	return c
}

func (c *CustomCollection) Publish(ctx context.Context) error {
	return c.SetPublished(true).Save(ctx)
}

func (c *CustomCollection) Unpublish(ctx context.Context) error {
	return c.SetPublished(false).Save(ctx)
}

// Add sets the collection's collects to productIDs and saves.
func (c *CustomCollection) Add(ctx context.Context, productIDs ...api.ID) error {
	collects := make([]any, 0, len(productIDs))
	for _, id := range productIDs {
		collects = append(collects, map[string]any{"product_id": id.String()})
	}
	c.SetOriginal("collects", collects)
	return c.Save(ctx)
}

func (c *CustomCollection) Metafields() MetafieldSet { return metafieldsOf(c) }
