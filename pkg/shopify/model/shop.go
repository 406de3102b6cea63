package model

import (
	"context"
	"time"

	"shopifyapi/pkg/shopify/api"
)

// Shop is the singleton shop the credentials belong to. It is read-only.
type Shop struct{ *Record }

var Shops = NewKind(api.KindShop, func(r *Record) *Shop { return &Shop{Record: r} })

// CurrentShop fetches /admin/shop.json.
func CurrentShop(ctx context.Context, reg *api.Registry) (*Shop, error) {
	s, err := Shops.New(reg)
	if err != nil {
		return nil, err
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Shop) Name() string { return s.String("name") }

func (s *Shop) Email() string { return s.String("email") }

func (s *Shop) Domain() string { return s.String("domain") }

func (s *Shop) MyshopifyDomain() string { return s.String("myshopify_domain") }

func (s *Shop) Currency() string { return s.String("currency") }

func (s *Shop) PlanName() string { return s.String("plan_name") }

func (s *Shop) TaxesIncluded() bool { return s.Bool("taxes_included") }

// Location loads the shop's IANA time zone; UTC when unset.
func (s *Shop) Location() (*time.Location, error) {
	tz := s.String("iana_timezone")
	if tz == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(tz)
}
