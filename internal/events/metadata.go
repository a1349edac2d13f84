package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// MetadataBuilder assembles event metadata with fluent configuration methods.
// Build fills defaults for anything left unset.
type MetadataBuilder struct {
	md Metadata
}

// NewMetadataBuilder creates a builder stamped with the producing service name.
func NewMetadataBuilder(source string) *MetadataBuilder {
	return &MetadataBuilder{md: Metadata{Source: source}}
}

func (b *MetadataBuilder) WithEventID(id string) *MetadataBuilder {
	b.md.EventID = id
	return b
}

func (b *MetadataBuilder) WithCorrelationID(id string) *MetadataBuilder {
	b.md.CorrelationID = &id
	return b
}

func (b *MetadataBuilder) WithCausationID(id string) *MetadataBuilder {
	b.md.CausationID = &id
	return b
}

func (b *MetadataBuilder) WithUserID(id string) *MetadataBuilder {
	b.md.UserID = &id
	return b
}

func (b *MetadataBuilder) WithPriority(p Priority) *MetadataBuilder {
	b.md.Priority = p
	return b
}

func (b *MetadataBuilder) WithVersion(v string) *MetadataBuilder {
	b.md.Version = v
	return b
}

// WithTTL sets the expiry relative to now. Events past their expiry are never
// retried.
func (b *MetadataBuilder) WithTTL(ttl time.Duration) *MetadataBuilder {
	expires := time.Now().UTC().Add(ttl)
	b.md.ExpiresAt = &expires
	return b
}

// WithTraceContext captures the active OpenTelemetry span identifiers from
// the context, if a span is recording.
func (b *MetadataBuilder) WithTraceContext(ctx context.Context) *MetadataBuilder {
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		traceID := sc.TraceID().String()
		b.md.TraceID = &traceID
	}
	if sc.HasSpanID() {
		spanID := sc.SpanID().String()
		b.md.SpanID = &spanID
	}
	return b
}

// Build finalizes the metadata: EventID is generated if absent, Timestamp,
// Version and Priority receive defaults.
func (b *MetadataBuilder) Build() Metadata {
	md := b.md
	if md.EventID == "" {
		md.EventID = uuid.New().String()
	}
	if md.Timestamp.IsZero() {
		md.Timestamp = time.Now().UTC()
	}
	if md.Version == "" {
		md.Version = DefaultVersion
	}
	if md.Priority == "" {
		md.Priority = PriorityNormal
	}
	return md
}

// Enrich merges overlay onto base without mutating either input. Set fields
// of the overlay win; the base provides everything else. RetryCount takes the
// larger of the two so it stays monotonic.
func Enrich(base, overlay Metadata) Metadata {
	merged := base

	if overlay.EventID != "" {
		merged.EventID = overlay.EventID
	}
	if !overlay.Timestamp.IsZero() {
		merged.Timestamp = overlay.Timestamp
	}
	if overlay.Version != "" {
		merged.Version = overlay.Version
	}
	if overlay.Source != "" {
		merged.Source = overlay.Source
	}
	if overlay.CorrelationID != nil {
		merged.CorrelationID = overlay.CorrelationID
	}
	if overlay.CausationID != nil {
		merged.CausationID = overlay.CausationID
	}
	if overlay.UserID != nil {
		merged.UserID = overlay.UserID
	}
	if overlay.TraceID != nil {
		merged.TraceID = overlay.TraceID
	}
	if overlay.SpanID != nil {
		merged.SpanID = overlay.SpanID
	}
	if overlay.RetryCount > merged.RetryCount {
		merged.RetryCount = overlay.RetryCount
	}
	if overlay.Priority != "" {
		merged.Priority = overlay.Priority
	}
	if overlay.ExpiresAt != nil {
		merged.ExpiresAt = overlay.ExpiresAt
	}

	return merged
}

// IsExpired reports whether the event's expiry has passed. No expiry
// configured means the event never expires.
func IsExpired(md Metadata) bool {
	if md.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*md.ExpiresAt)
}

// ShouldRetry reports whether another delivery attempt is allowed: the retry
// budget must not be exhausted and the event must not be expired. Callers
// must consult this before every attempt, not only at schedule time.
func ShouldRetry(md Metadata, maxRetries int) bool {
	return md.RetryCount < maxRetries && !IsExpired(md)
}
