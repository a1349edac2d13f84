// Package payload holds the typed event payloads published by the service.
// Field names (via their json tags) must line up with the required-fields
// table in the events package.
package payload

import "time"

type ProductCreated struct {
	ProductID  string  `json:"product_id"`
	Title      string  `json:"title"`
	Price      float64 `json:"price"`
	CategoryID string  `json:"category_id,omitempty"`
}

type ProductUpdated struct {
	ProductID     string   `json:"product_id"`
	ChangedFields []string `json:"changed_fields"`
	CategoryID    string   `json:"category_id,omitempty"`
	Colour        string   `json:"colour,omitempty"`
}

type ProductDeleted struct {
	ProductID string `json:"product_id"`
}

type ProductArchived struct {
	ProductID string `json:"product_id"`
	Reason    string `json:"reason"`
}

type PriceChanged struct {
	ProductID string  `json:"product_id"`
	OldPrice  float64 `json:"old_price"`
	NewPrice  float64 `json:"new_price"`
	Reason    string  `json:"reason,omitempty"`
}

type LowStock struct {
	ProductID      string `json:"product_id"`
	AvailableStock int    `json:"available_stock"`
	Threshold      int    `json:"threshold"`
}

type OutOfStock struct {
	ProductID string `json:"product_id"`
}

type BackInStock struct {
	ProductID      string `json:"product_id"`
	AvailableStock int    `json:"available_stock"`
}

type InventoryUpdated struct {
	ProductID         string `json:"product_id"`
	AvailableStock    int    `json:"available_stock"`
	PreviousStock     int    `json:"previous_stock"`
	LowStockThreshold int    `json:"low_stock_threshold,omitempty"`
}

type InventoryAdjusted struct {
	ProductID string `json:"product_id"`
	Delta     int    `json:"delta"`
	Reason    string `json:"reason,omitempty"`
}

type InventoryReservation struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type OrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type OrderCreated struct {
	OrderID    string      `json:"order_id"`
	CustomerID string      `json:"customer_id,omitempty"`
	Items      []OrderItem `json:"items"`
}

type OrderCancelled struct {
	OrderID string      `json:"order_id"`
	Items   []OrderItem `json:"items"`
	Reason  string      `json:"reason,omitempty"`
}

type OrderStatus struct {
	OrderID string `json:"order_id"`
}

type Payment struct {
	PaymentID string  `json:"payment_id"`
	OrderID   string  `json:"order_id"`
	Amount    float64 `json:"amount"`
	Reason    string  `json:"reason,omitempty"`
}

type Appointment struct {
	AppointmentID string    `json:"appointment_id"`
	CustomerID    string    `json:"customer_id,omitempty"`
	Slot          time.Time `json:"slot,omitempty"`
}

type Customer struct {
	CustomerID string `json:"customer_id"`
	Email      string `json:"email,omitempty"`
}

type NotificationRequested struct {
	Channel   string         `json:"channel"`
	Template  string         `json:"template"`
	Recipient string         `json:"recipient"`
	Data      map[string]any `json:"data,omitempty"`
}

type SignificantPriceChange struct {
	ProductID     string  `json:"product_id"`
	OldPrice      float64 `json:"old_price"`
	NewPrice      float64 `json:"new_price"`
	PercentChange float64 `json:"percent_change"`
}

type PricingRulesApplied struct {
	ProductID string   `json:"product_id"`
	RuleIDs   []string `json:"rule_ids"`
	OldPrice  float64  `json:"old_price"`
	NewPrice  float64  `json:"new_price"`
}

type SearchIndexRebuilt struct {
	IndexedCount int `json:"indexed_count"`
	TermCount    int `json:"term_count"`
}

type JobCompleted struct {
	Job        string         `json:"job"`
	DurationMS int64          `json:"duration_ms"`
	Counters   map[string]int `json:"counters,omitempty"`
}

type JobFailed struct {
	Job   string `json:"job"`
	Error string `json:"error"`
}
