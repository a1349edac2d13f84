// Package events defines the event envelope, the metadata builder and the
// topic registry that form the wire contract between producers and consumers.
package events

import "time"

// Priority orders events by urgency. Delivery itself is priority-agnostic;
// the field exists for consumers that want to shed low-priority work.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Metadata contains the technical identity of an event, separate from the
// business payload. All fields are immutable after Build except RetryCount,
// which is only ever incremented by the retry loop.
type Metadata struct {
	// Unique event identifier (UUID).
	EventID string `json:"event_id"`
	// Event creation timestamp.
	Timestamp time.Time `json:"timestamp"`
	// Envelope schema version.
	Version string `json:"version"`
	// Source service that produced the event.
	Source string `json:"source"`
	// Correlation ID links all events belonging to one logical flow.
	CorrelationID *string `json:"correlation_id,omitempty"`
	// Causation ID is the EventID of the event that directly caused this one.
	CausationID *string `json:"causation_id,omitempty"`
	// User on whose behalf the event was produced, if any.
	UserID *string `json:"user_id,omitempty"`
	// OpenTelemetry trace/span identifiers for distributed tracing.
	TraceID *string `json:"trace_id,omitempty"`
	SpanID  *string `json:"span_id,omitempty"`
	// Number of delivery attempts already made. Monotonically non-decreasing.
	RetryCount int `json:"retry_count"`
	// Delivery priority.
	Priority Priority `json:"priority"`
	// After this instant the event must not be retried. Nil means no expiry.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Envelope is what travels over the transport: a registered topic, an
// optional partition-style key, the payload value and the metadata.
type Envelope struct {
	Topic    string   `json:"topic"`
	Key      *string  `json:"key,omitempty"`
	Value    any      `json:"value"`
	Metadata Metadata `json:"metadata"`
}

// DefaultVersion is stamped on metadata built without an explicit version.
const DefaultVersion = "1.0"
