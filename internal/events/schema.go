package events

import (
	"encoding/json"
	"fmt"

	"github.com/neel2751/lomashwood-product-service/internal/domain"
)

// requiredFields lists the payload fields that must be present for a topic.
// Presence only: field types are the producer/consumer pair's responsibility.
// Topics without an entry accept any payload.
var requiredFields = map[string][]string{
	TopicProductCreated:      {"product_id", "title", "price"},
	TopicProductUpdated:      {"product_id", "changed_fields"},
	TopicProductDeleted:      {"product_id"},
	TopicProductArchived:     {"product_id", "reason"},
	TopicProductPriceChanged: {"product_id", "old_price", "new_price"},
	TopicProductLowStock:     {"product_id", "available_stock", "threshold"},
	TopicProductOutOfStock:   {"product_id"},
	TopicProductBackInStock:  {"product_id", "available_stock"},

	TopicInventoryUpdated:  {"product_id", "available_stock", "previous_stock"},
	TopicInventoryAdjusted: {"product_id", "delta"},
	TopicInventoryReserved: {"product_id", "quantity"},
	TopicInventoryReleased: {"product_id", "quantity"},

	TopicOrderCreated:   {"order_id", "items"},
	TopicOrderConfirmed: {"order_id"},
	TopicOrderCancelled: {"order_id", "items"},
	TopicOrderCompleted: {"order_id"},

	TopicPaymentInitiated: {"payment_id", "order_id", "amount"},
	TopicPaymentSucceeded: {"payment_id", "order_id"},
	TopicPaymentFailed:    {"payment_id", "order_id", "reason"},
	TopicPaymentRefunded:  {"payment_id", "order_id", "amount"},

	TopicAppointmentBooked:      {"appointment_id", "customer_id", "slot"},
	TopicAppointmentRescheduled: {"appointment_id", "slot"},
	TopicAppointmentCancelled:   {"appointment_id"},
	TopicAppointmentCompleted:   {"appointment_id"},

	TopicCustomerRegistered: {"customer_id", "email"},
	TopicCustomerUpdated:    {"customer_id"},

	TopicNotificationRequested: {"channel", "template", "recipient"},

	TopicPricingSignificantChange: {"product_id", "old_price", "new_price", "percent_change"},
	TopicPricingRulesApplied:      {"product_id", "rule_ids"},

	TopicSearchIndexRebuilt: {"indexed_count"},

	TopicJobCompleted: {"job", "duration_ms"},
	TopicJobFailed:    {"job", "error"},
}

// ValidatePayload checks the payload against the topic's required-fields
// table. Unknown topics are a caller error. The payload is viewed through its
// JSON representation, so typed structs and maps validate identically.
func ValidatePayload(topic string, value any) error {
	if !IsValidTopic(topic) {
		return fmt.Errorf("%w: unknown topic %q", domain.ErrValidation, topic)
	}

	fields, ok := requiredFields[topic]
	if !ok || len(fields) == 0 {
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: payload for %q is not serializable: %v", domain.ErrValidation, topic, err)
	}

	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return fmt.Errorf("%w: payload for %q must be an object", domain.ErrValidation, topic)
	}

	for _, field := range fields {
		v, present := asMap[field]
		if !present || string(v) == "null" {
			return fmt.Errorf("%w: payload for %q is missing required field %q", domain.ErrValidation, topic, field)
		}
	}

	return nil
}
