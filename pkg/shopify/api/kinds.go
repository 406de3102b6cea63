package api

// Built-in kind names.
const (
	KindProduct          = "product"
	KindOrder            = "order"
	KindVariant          = "variant"
	KindDiscount         = "discount"
	KindWebhook          = "webhook"
	KindShop             = "shop"
	KindMetafield        = "metafield"
	KindCustomCollection = "custom_collection"
)

// Builtin returns fresh descriptors for every kind the Admin REST API
// wrapper knows.
func Builtin() []*Descriptor {
	return []*Descriptor{
		{
			Kind:       KindProduct,
			Collection: "products",
			Path:       "/admin/products/#id#.json",
			Wrap:       "product",
			WrapMany:   "products",
			Ops:        OpAll,
			Fields: []string{
				"id", "title", "body_html", "vendor", "product_type", "created_at",
				"handle", "updated_at", "published_at", "template_suffix",
				"published_scope", "tags", "variants", "options", "images", "image",
			},
		},
		{
			Kind:       KindOrder,
			Collection: "orders",
			Path:       "/admin/orders/#id#.json",
			Wrap:       "order",
			WrapMany:   "orders",
			Ops:        OpAll,
			Fields: []string{
				"id", "email", "closed_at", "created_at", "updated_at", "number", "note",
				"token", "gateway", "test", "total_price", "subtotal_price", "total_weight",
				"total_tax", "taxes_included", "currency", "financial_status", "confirmed",
				"total_discounts", "total_line_items_price", "cart_token",
				"buyer_accepts_marketing", "name", "referring_site", "landing_site",
				"cancelled_at", "cancel_reason", "total_price_usd", "checkout_token",
				"reference", "user_id", "location_id", "source_identifier", "source_url",
				"processed_at", "device_id", "browser_ip", "landing_site_ref",
				"order_number", "discount_codes", "note_attributes",
				"payment_gateway_names", "processing_method", "checkout_id",
				"source_name", "fulfillment_status", "tax_lines", "tags",
				"contact_email", "order_status_url", "line_items", "shipping_lines",
				"billing_address", "fulfillments", "client_details", "refunds",
				"payment_details",
			},
		},
		{
			Kind:           KindVariant,
			Collection:     "variants",
			Path:           "/admin/variants/#id#.json",
			Wrap:           "variant",
			WrapMany:       "variants",
			Ops:            OpAll,
			IgnoreOnUpdate: []string{"created_at", "updated_at"},
			Parents:        []string{"products"},
			ScopeRequired:  true,
			ScopeField:     "product_id",
			Fields: []string{
				"id", "product_id", "title", "price", "sku", "position", "grams",
				"inventory_policy", "compare_at_price", "fulfillment_service",
				"inventory_management", "option1", "option2", "option3", "created_at",
				"updated_at", "taxable", "barcode", "image_id", "inventory_quantity",
				"weight", "weight_unit", "old_inventory_quantity", "requires_shipping",
			},
		},
		{
			Kind:       KindDiscount,
			Collection: "discounts",
			Path:       "/admin/discounts/#id#.json",
			Wrap:       "discount",
			WrapMany:   "discounts",
			Ops:        OpShow | OpList | OpCreate | OpDelete,
			Fields: []string{
				"id", "discount_type", "code", "value", "ends_at", "starts_at", "status",
				"minimum_order_amount", "usage_limit", "applies_to_id", "applies_once",
				"applies_once_per_customer", "applies_to_resource", "times_used",
			},
		},
		{
			Kind:       KindWebhook,
			Collection: "webhooks",
			Path:       "/admin/webhooks/#id#.json",
			Wrap:       "webhook",
			WrapMany:   "webhooks",
			Ops:        OpAll,
			Fields: []string{
				"address", "created_at", "fields", "format", "id",
				"metafield_namespaces", "topic", "updated_at",
			},
		},
		{
			Kind:       KindShop,
			Collection: "shops",
			Path:       "/admin/shop.json",
			Wrap:       "shop",
			WrapMany:   "shops",
			Ops:        OpShow,
			Fields: []string{
				"id", "name", "email", "domain", "created_at", "province", "country",
				"address1", "zip", "city", "source", "phone", "updated_at",
				"customer_email", "latitude", "longitude", "primary_location_id",
				"primary_locale", "address2", "country_code", "country_name", "currency",
				"timezone", "iana_timezone", "shop_owner", "money_format",
				"money_with_currency_format", "weight_unit", "province_code",
				"taxes_included", "tax_shipping", "county_taxes", "plan_display_name",
				"plan_name", "has_discounts", "has_gift_cards", "myshopify_domain",
				"google_apps_domain", "google_apps_login_enabled",
				"money_in_emails_format", "money_with_currency_in_emails_format",
				"eligible_for_payments", "requires_extra_payments_agreement",
				"password_enabled", "has_storefront",
				"eligible_for_card_reader_giveaway", "finances", "setup_required",
				"force_ssl",
			},
		},
		{
			Kind:         KindMetafield,
			Collection:   "metafields",
			Path:         "/admin/metafields/#id#.json",
			Wrap:         "metafield",
			WrapMany:     "metafields",
			Ops:          OpAll,
			Parents:      []string{"products", "variants", "orders", "custom_collections"},
			ScopeMembers: true,
			Fields: []string{
				"id", "namespace", "key", "value", "value_type", "description",
				"owner_id", "owner_resource", "created_at", "updated_at",
			},
		},
		{
			Kind:       KindCustomCollection,
			Collection: "custom_collections",
			Path:       "/admin/custom_collections/#id#.json",
			Wrap:       "custom_collection",
			WrapMany:   "custom_collections",
			Ops:        OpAll,
			Fields: []string{
				"id", "title", "body_html", "handle", "created_at", "updated_at",
				"published_at", "published", "template_suffix", "published_scope",
				"sort_order", "image", "collects",
			},
		},
	}
}
