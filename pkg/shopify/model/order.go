package model

import (
	"time"

	"github.com/shopspring/decimal"

	"shopifyapi/pkg/shopify/api"
)

// Order is a placed order.
type Order struct{ *Record }

var Orders = NewKind(api.KindOrder, func(r *Record) *Order { return &Order{Record: r} })

func (o *Order) Email() string { return o.String("email") }

func (o *Order) Name() string { return o.String("name") }

func (o *Order) Note() string { return o.String("note") }

func (o *Order) SetNote(note string) *Order {
	o.SetOriginal("note", note)
	return o
}

func (o *Order) OrderNumber() int64 { return o.Int64("order_number") }

func (o *Order) Currency() string { return o.String("currency") }

func (o *Order) FinancialStatus() string { return o.String("financial_status") }

func (o *Order) FulfillmentStatus() string { return o.String("fulfillment_status") }

func (o *Order) TotalPrice() decimal.Decimal { return o.money("total_price") }

func (o *Order) SubtotalPrice() decimal.Decimal { return o.money("subtotal_price") }

func (o *Order) TotalTax() decimal.Decimal { return o.money("total_tax") }

func (o *Order) TotalDiscounts() decimal.Decimal { return o.money("total_discounts") }

func (o *Order) money(name string) decimal.Decimal {
	d, _ := o.Decimal(name)
	return d
}

func (o *Order) ClosedAt() (time.Time, bool) { return o.Time("closed_at") }

func (o *Order) SetClosedAt(t time.Time) *Order {
	o.SetTime("closed_at", t)
	return o
}

func (o *Order) CancelledAt() (time.Time, bool) { return o.Time("cancelled_at") }

func (o *Order) ProcessedAt() (time.Time, bool) { return o.Time("processed_at") }

func (o *Order) Tags() []string { return o.tags("tags") }

func (o *Order) SetTags(tags []string) *Order {
	o.setTags("tags", tags)
	return o
}

// LineItems returns the line item objects of the payload.
func (o *Order) LineItems() []map[string]any {
	return api.UnwrapList(o.GetOriginal("line_items"), "")
}

func (o *Order) Metafields() MetafieldSet { return metafieldsOf(o) }
