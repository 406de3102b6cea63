package shopify

import (
	"sort"
	"strings"
)

// Webhook topics.
const (
	TopicAppUninstalled            = "app/uninstalled"
	TopicCartsCreate               = "carts/create"
	TopicCartsUpdate               = "carts/update"
	TopicCheckoutsCreate           = "checkouts/create"
	TopicCheckoutsDelete           = "checkouts/delete"
	TopicCheckoutsUpdate           = "checkouts/update"
	TopicCollectionListingsAdd     = "collection_listings/add"
	TopicCollectionListingsRemove  = "collection_listings/remove"
	TopicCollectionListingsUpdate  = "collection_listings/update"
	TopicCollectionsCreate         = "collections/create"
	TopicCollectionsDelete         = "collections/delete"
	TopicCollectionsUpdate         = "collections/update"
	TopicCustomerGroupsCreate      = "customer_groups/create"
	TopicCustomerGroupsDelete      = "customer_groups/delete"
	TopicCustomerGroupsUpdate      = "customer_groups/update"
	TopicCustomersCreate           = "customers/create"
	TopicCustomersDelete           = "customers/delete"
	TopicCustomersDisable          = "customers/disable"
	TopicCustomersEnable           = "customers/enable"
	TopicCustomersUpdate           = "customers/update"
	TopicDisputesCreate            = "disputes/create"
	TopicDisputesUpdate            = "disputes/update"
	TopicDraftOrdersCreate         = "draft_orders/create"
	TopicDraftOrdersDelete         = "draft_orders/delete"
	TopicDraftOrdersUpdate         = "draft_orders/update"
	TopicFulfillmentEventsCreate   = "fulfillment_events/create"
	TopicFulfillmentEventsDelete   = "fulfillment_events/delete"
	TopicFulfillmentsCreate        = "fulfillments/create"
	TopicFulfillmentsUpdate        = "fulfillments/update"
	TopicOrderTransactionsCreate   = "order_transactions/create"
	TopicOrdersCancelled           = "orders/cancelled"
	TopicOrdersCreate              = "orders/create"
	TopicOrdersDelete              = "orders/delete"
	TopicOrdersFulfilled           = "orders/fulfilled"
	TopicOrdersPaid                = "orders/paid"
	TopicOrdersPartiallyFulfilled  = "orders/partially_fulfilled"
	TopicOrdersUpdated             = "orders/updated"
	TopicProductListingsAdd        = "product_listings/add"
	TopicProductListingsRemove     = "product_listings/remove"
	TopicProductListingsUpdate     = "product_listings/update"
	TopicProductsCreate            = "products/create"
	TopicProductsDelete            = "products/delete"
	TopicProductsUpdate            = "products/update"
	TopicRefundsCreate             = "refunds/create"
	TopicShopUpdate                = "shop/update"
	TopicThemesCreate              = "themes/create"
	TopicThemesDelete              = "themes/delete"
	TopicThemesPublish             = "themes/publish"
	TopicThemesUpdate              = "themes/update"
)

var topics = func() map[string]string {
	all := []string{
		TopicAppUninstalled,
		TopicCartsCreate, TopicCartsUpdate,
		TopicCheckoutsCreate, TopicCheckoutsDelete, TopicCheckoutsUpdate,
		TopicCollectionListingsAdd, TopicCollectionListingsRemove, TopicCollectionListingsUpdate,
		TopicCollectionsCreate, TopicCollectionsDelete, TopicCollectionsUpdate,
		TopicCustomerGroupsCreate, TopicCustomerGroupsDelete, TopicCustomerGroupsUpdate,
		TopicCustomersCreate, TopicCustomersDelete, TopicCustomersDisable, TopicCustomersEnable, TopicCustomersUpdate,
		TopicDisputesCreate, TopicDisputesUpdate,
		TopicDraftOrdersCreate, TopicDraftOrdersDelete, TopicDraftOrdersUpdate,
		TopicFulfillmentEventsCreate, TopicFulfillmentEventsDelete, TopicFulfillmentsCreate, TopicFulfillmentsUpdate,
		TopicOrderTransactionsCreate,
		TopicOrdersCancelled, TopicOrdersCreate, TopicOrdersDelete, TopicOrdersFulfilled,
		TopicOrdersPaid, TopicOrdersPartiallyFulfilled, TopicOrdersUpdated,
		TopicProductListingsAdd, TopicProductListingsRemove, TopicProductListingsUpdate,
		TopicProductsCreate, TopicProductsDelete, TopicProductsUpdate,
		TopicRefundsCreate,
		TopicShopUpdate,
		TopicThemesCreate, TopicThemesDelete, TopicThemesPublish, TopicThemesUpdate,
	}
	m := make(map[string]string, len(all))
	for _, t := range all {
		m[NormalizeTopic(t)] = t
	}
	return m
}()

// Topics lists every known topic, sorted.
func Topics() []string {
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// ValidTopic reports whether topic, in either form, is a known topic.
func ValidTopic(topic string) bool {
	_, ok := topics[NormalizeTopic(topic)]
	return ok
}

// CanonicalTopic returns the Shopify form ("orders/paid") of a known topic
// given in either form.
func CanonicalTopic(topic string) (string, bool) {
	t, ok := topics[NormalizeTopic(topic)]
	return t, ok
}

// NormalizeTopic converts Shopify topic strings (often like "orders/paid") into a stable internal form.
// Examples:
// - "orders/paid" -> "orders_paid"
// - "app/uninstalled" -> "app_uninstalled"
func NormalizeTopic(topic string) string {
	t := strings.TrimSpace(strings.ToLower(topic))
	t = strings.ReplaceAll(t, "/", "_")
	t = strings.ReplaceAll(t, ".", "_")
	t = strings.ReplaceAll(t, "-", "_")
	for strings.Contains(t, "__") {
		t = strings.ReplaceAll(t, "__", "_")
	}
	return strings.Trim(t, "_")
}
