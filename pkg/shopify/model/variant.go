package model

import (
	"context"

	"github.com/shopspring/decimal"

	"shopifyapi/pkg/shopify/api"
)

// Variant is one purchasable variation of a product.
type Variant struct{ *Record }

var Variants = NewKind(api.KindVariant, func(r *Record) *Variant {
	r.On(PreCreate, requireVariantOption)
	return &Variant{Record: r}
})

func requireVariantOption(_ context.Context, r *Record) error {
	for _, opt := range []string{"option1", "option2", "option3"} {
		if r.Has(opt) {
			return nil
		}
	}
	return &api.OperationError{Op: "create", Kind: r.kind, Reason: "an option is required", Err: api.ErrUnsupportedOperation}
}

func (v *Variant) ProductID() api.ID {
	id, _ := api.IDOf(v.GetOriginal("product_id"))
	return id
}

func (v *Variant) Title() string { return v.String("title") }

func (v *Variant) SKU() string { return v.String("sku") }

func (v *Variant) Barcode() string { return v.String("barcode") }

// Option returns option1, option2 or option3.
func (v *Variant) Option(n int) string {
	switch n {
	case 1:
		return v.String("option1")
	case 2:
		return v.String("option2")
	case 3:
		return v.String("option3")
	}
	return ""
}

func (v *Variant) Price() decimal.Decimal {
	d, _ := v.Decimal("price")
	return d
}

func (v *Variant) SetPrice(d decimal.Decimal) *Variant {
	v.SetDecimal("price", d)
	return v
}

// CompareAtPrice is false when the variant has no compare-at price.
func (v *Variant) CompareAtPrice() (decimal.Decimal, bool) { return v.Decimal("compare_at_price") }

func (v *Variant) InventoryQuantity() int64 { return v.Int64("inventory_quantity") }

func (v *Variant) Grams() int64 { return v.Int64("grams") }

// Product loads the parent product.
func (v *Variant) Product(ctx context.Context) (*Product, error) {
	return Products.Find(ctx, v.reg, v.ProductID())
}

func (v *Variant) Metafields() MetafieldSet { return metafieldsOf(v) }
