package events

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Topic constants for the event names used across the service. The dotted
// strings are the wire contract: producers and consumers must agree on them
// exactly, there is no version negotiation.
const (
	TopicProductCreated      = "product.created"
	TopicProductUpdated      = "product.updated"
	TopicProductDeleted      = "product.deleted"
	TopicProductArchived     = "product.archived"
	TopicProductPriceChanged = "product.priceChanged"
	TopicProductLowStock     = "product.lowStock"
	TopicProductOutOfStock   = "product.outOfStock"
	TopicProductBackInStock  = "product.backInStock"

	TopicInventoryUpdated  = "inventory.updated"
	TopicInventoryAdjusted = "inventory.adjusted"
	TopicInventoryReserved = "inventory.reserved"
	TopicInventoryReleased = "inventory.released"

	TopicOrderCreated   = "order.created"
	TopicOrderConfirmed = "order.confirmed"
	TopicOrderCancelled = "order.cancelled"
	TopicOrderCompleted = "order.completed"

	TopicPaymentInitiated = "payment.initiated"
	TopicPaymentSucceeded = "payment.succeeded"
	TopicPaymentFailed    = "payment.failed"
	TopicPaymentRefunded  = "payment.refunded"

	TopicAppointmentBooked      = "appointment.booked"
	TopicAppointmentRescheduled = "appointment.rescheduled"
	TopicAppointmentCancelled   = "appointment.cancelled"
	TopicAppointmentCompleted   = "appointment.completed"

	TopicCustomerRegistered = "customer.registered"
	TopicCustomerUpdated    = "customer.updated"

	TopicNotificationRequested = "notification.requested"

	TopicPricingSignificantChange = "pricing.significantChange"
	TopicPricingRulesApplied      = "pricing.rulesApplied"

	TopicSearchIndexRebuilt = "search.indexRebuilt"

	TopicJobCompleted = "job.completed"
	TopicJobFailed    = "job.failed"
)

// catalog groups every valid topic by domain. It is the single source of
// truth consulted by IsValidTopic and the schema validator.
var catalog = map[string]map[string]string{
	"product": {
		"created":      TopicProductCreated,
		"updated":      TopicProductUpdated,
		"deleted":      TopicProductDeleted,
		"archived":     TopicProductArchived,
		"priceChanged": TopicProductPriceChanged,
		"lowStock":     TopicProductLowStock,
		"outOfStock":   TopicProductOutOfStock,
		"backInStock":  TopicProductBackInStock,
	},
	"inventory": {
		"updated":  TopicInventoryUpdated,
		"adjusted": TopicInventoryAdjusted,
		"reserved": TopicInventoryReserved,
		"released": TopicInventoryReleased,
	},
	"order": {
		"created":   TopicOrderCreated,
		"confirmed": TopicOrderConfirmed,
		"cancelled": TopicOrderCancelled,
		"completed": TopicOrderCompleted,
	},
	"payment": {
		"initiated": TopicPaymentInitiated,
		"succeeded": TopicPaymentSucceeded,
		"failed":    TopicPaymentFailed,
		"refunded":  TopicPaymentRefunded,
	},
	"appointment": {
		"booked":      TopicAppointmentBooked,
		"rescheduled": TopicAppointmentRescheduled,
		"cancelled":   TopicAppointmentCancelled,
		"completed":   TopicAppointmentCompleted,
	},
	"customer": {
		"registered": TopicCustomerRegistered,
		"updated":    TopicCustomerUpdated,
	},
	"notification": {
		"requested": TopicNotificationRequested,
	},
	"pricing": {
		"significantChange": TopicPricingSignificantChange,
		"rulesApplied":      TopicPricingRulesApplied,
	},
	"search": {
		"indexRebuilt": TopicSearchIndexRebuilt,
	},
	"job": {
		"completed": TopicJobCompleted,
		"failed":    TopicJobFailed,
	},
}

// topicSet is derived once from the catalog for O(1) validation.
var topicSet = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, group := range catalog {
		for _, topic := range group {
			set[topic] = struct{}{}
		}
	}
	return set
}()

// IsValidTopic reports whether the topic exists in the catalog.
func IsValidTopic(topic string) bool {
	_, ok := topicSet[topic]
	return ok
}

// TopicCategory returns the domain group of a topic ("product" for
// "product.created"). The second return is false for unknown topics.
func TopicCategory(topic string) (string, bool) {
	if !IsValidTopic(topic) {
		return "", false
	}
	return strings.SplitN(topic, ".", 2)[0], true
}

// AllTopics returns every registered topic, sorted for stable output.
func AllTopics() []string {
	topics := lo.Keys(topicSet)
	sort.Strings(topics)
	return topics
}
