package consumer

import (
	"encoding/json"
	"fmt"

	"github.com/neel2751/lomashwood-product-service/internal/domain"
	"github.com/neel2751/lomashwood-product-service/internal/events"
)

// decodePayload views the envelope value as T through its JSON form, so
// handlers accept both typed structs and generic maps.
func decodePayload[T any](env events.Envelope) (T, error) {
	var out T

	raw, err := json.Marshal(env.Value)
	if err != nil {
		return out, fmt.Errorf("%w: payload of %s is not serializable: %v", domain.ErrValidation, env.Topic, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: payload of %s has unexpected shape: %v", domain.ErrValidation, env.Topic, err)
	}
	return out, nil
}

// derivedFrom builds the metadata overlay for an event published as a direct
// consequence of another: causation points at the origin event, correlation
// is inherited or started from the origin.
func derivedFrom(md events.Metadata) events.Metadata {
	causation := md.EventID
	correlation := md.EventID
	if md.CorrelationID != nil {
		correlation = *md.CorrelationID
	}
	return events.Metadata{
		CausationID:   &causation,
		CorrelationID: &correlation,
	}
}
