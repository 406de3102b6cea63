package model

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"shopifyapi/pkg/shopify/api"
)

// Discount is a discount code. Discounts cannot be updated; they are
// enabled, disabled or removed.
type Discount struct{ *Record }

var Discounts = NewKind(api.KindDiscount, func(r *Record) *Discount { return &Discount{Record: r} })

const (
	DiscountEnabled  = "enabled"
	DiscountDisabled = "disabled"
)

func (d *Discount) Code() string { return d.String("code") }

func (d *Discount) DiscountType() string { return d.String("discount_type") }

func (d *Discount) Status() string { return d.String("status") }

func (d *Discount) Value() decimal.Decimal {
	v, _ := d.Decimal("value")
	return v
}

func (d *Discount) MinimumOrderAmount() (decimal.Decimal, bool) {
	return d.Decimal("minimum_order_amount")
}

func (d *Discount) StartsAt() (time.Time, bool) { return d.Time("starts_at") }

func (d *Discount) EndsAt() (time.Time, bool) { return d.Time("ends_at") }

func (d *Discount) TimesUsed() int64 { return d.Int64("times_used") }

// Enable posts to the enable endpoint unless the discount is already
// enabled.
func (d *Discount) Enable(ctx context.Context) error { return d.setStatus(ctx, "enable", DiscountEnabled) }

// Disable posts to the disable endpoint unless the discount is already
// disabled.
func (d *Discount) Disable(ctx context.Context) error {
	return d.setStatus(ctx, "disable", DiscountDisabled)
}

// Delete is Remove.
func (d *Discount) Delete(ctx context.Context) error { return d.Remove(ctx) }

func (d *Discount) setStatus(ctx context.Context, action, status string) error {
	if err := d.usable(action); err != nil {
		return err
	}
	if d.IsNew() {
		return &api.OperationError{Op: action, Kind: d.kind, Reason: "record has no id", Err: api.ErrUnsupportedOperation}
	}
	if d.Status() == status {
		return nil
	}
	resp, err := d.api.Action(ctx, d.id, action, nil)
	if err != nil {
		return err
	}
	if data := api.UnwrapObject(resp, d.api.Descriptor().Wrap); len(data) > 0 {
		id := d.id
		d.SetData(data)
		if d.id.IsZero() {
			d.id = id
		}
	} else {
		d.SetOriginal("status", status)
	}
	d.snapshot()
	return nil
}
