package producer

import (
	"context"

	"github.com/neel2751/lomashwood-product-service/internal/events"
	"github.com/neel2751/lomashwood-product-service/internal/events/payload"
)

// Events wraps the Producer with one typed publisher per domain event, so
// call sites never deal with raw topic strings or untyped payloads.
type Events struct {
	p Producer
}

// NewEvents creates the typed publisher facade.
func NewEvents(p Producer) *Events {
	return &Events{p: p}
}

func (e *Events) publish(ctx context.Context, topic string, value any, opts ...PublishOption) error {
	_, err := e.p.Publish(ctx, topic, value, opts...)
	return err
}

func (e *Events) ProductCreated(ctx context.Context, pl payload.ProductCreated) error {
	return e.publish(ctx, events.TopicProductCreated, pl, WithKey(pl.ProductID))
}

func (e *Events) ProductUpdated(ctx context.Context, pl payload.ProductUpdated) error {
	return e.publish(ctx, events.TopicProductUpdated, pl, WithKey(pl.ProductID))
}

func (e *Events) ProductDeleted(ctx context.Context, pl payload.ProductDeleted) error {
	return e.publish(ctx, events.TopicProductDeleted, pl, WithKey(pl.ProductID))
}

func (e *Events) ProductArchived(ctx context.Context, pl payload.ProductArchived) error {
	return e.publish(ctx, events.TopicProductArchived, pl, WithKey(pl.ProductID))
}

func (e *Events) PriceChanged(ctx context.Context, pl payload.PriceChanged) error {
	return e.publish(ctx, events.TopicProductPriceChanged, pl, WithKey(pl.ProductID))
}

func (e *Events) LowStock(ctx context.Context, pl payload.LowStock, opts ...PublishOption) error {
	opts = append(opts, WithKey(pl.ProductID))
	return e.publish(ctx, events.TopicProductLowStock, pl, opts...)
}

func (e *Events) OutOfStock(ctx context.Context, pl payload.OutOfStock, opts ...PublishOption) error {
	opts = append(opts, WithKey(pl.ProductID))
	return e.publish(ctx, events.TopicProductOutOfStock, pl, opts...)
}

func (e *Events) BackInStock(ctx context.Context, pl payload.BackInStock, opts ...PublishOption) error {
	opts = append(opts, WithKey(pl.ProductID))
	return e.publish(ctx, events.TopicProductBackInStock, pl, opts...)
}

func (e *Events) InventoryUpdated(ctx context.Context, pl payload.InventoryUpdated) error {
	return e.publish(ctx, events.TopicInventoryUpdated, pl, WithKey(pl.ProductID))
}

func (e *Events) InventoryAdjusted(ctx context.Context, pl payload.InventoryAdjusted) error {
	return e.publish(ctx, events.TopicInventoryAdjusted, pl, WithKey(pl.ProductID))
}

func (e *Events) InventoryReserved(ctx context.Context, pl payload.InventoryReservation) error {
	return e.publish(ctx, events.TopicInventoryReserved, pl, WithKey(pl.ProductID))
}

func (e *Events) InventoryReleased(ctx context.Context, pl payload.InventoryReservation) error {
	return e.publish(ctx, events.TopicInventoryReleased, pl, WithKey(pl.ProductID))
}

func (e *Events) OrderCreated(ctx context.Context, pl payload.OrderCreated) error {
	return e.publish(ctx, events.TopicOrderCreated, pl, WithKey(pl.OrderID))
}

func (e *Events) OrderConfirmed(ctx context.Context, pl payload.OrderStatus) error {
	return e.publish(ctx, events.TopicOrderConfirmed, pl, WithKey(pl.OrderID))
}

func (e *Events) OrderCancelled(ctx context.Context, pl payload.OrderCancelled) error {
	return e.publish(ctx, events.TopicOrderCancelled, pl, WithKey(pl.OrderID))
}

func (e *Events) OrderCompleted(ctx context.Context, pl payload.OrderStatus) error {
	return e.publish(ctx, events.TopicOrderCompleted, pl, WithKey(pl.OrderID))
}

func (e *Events) PaymentInitiated(ctx context.Context, pl payload.Payment) error {
	return e.publish(ctx, events.TopicPaymentInitiated, pl, WithKey(pl.OrderID))
}

func (e *Events) PaymentSucceeded(ctx context.Context, pl payload.Payment) error {
	return e.publish(ctx, events.TopicPaymentSucceeded, pl, WithKey(pl.OrderID))
}

func (e *Events) PaymentFailed(ctx context.Context, pl payload.Payment) error {
	return e.publish(ctx, events.TopicPaymentFailed, pl, WithKey(pl.OrderID))
}

func (e *Events) PaymentRefunded(ctx context.Context, pl payload.Payment) error {
	return e.publish(ctx, events.TopicPaymentRefunded, pl, WithKey(pl.OrderID))
}

func (e *Events) AppointmentBooked(ctx context.Context, pl payload.Appointment) error {
	return e.publish(ctx, events.TopicAppointmentBooked, pl, WithKey(pl.AppointmentID))
}

func (e *Events) AppointmentRescheduled(ctx context.Context, pl payload.Appointment) error {
	return e.publish(ctx, events.TopicAppointmentRescheduled, pl, WithKey(pl.AppointmentID))
}

func (e *Events) AppointmentCancelled(ctx context.Context, pl payload.Appointment) error {
	return e.publish(ctx, events.TopicAppointmentCancelled, pl, WithKey(pl.AppointmentID))
}

func (e *Events) AppointmentCompleted(ctx context.Context, pl payload.Appointment) error {
	return e.publish(ctx, events.TopicAppointmentCompleted, pl, WithKey(pl.AppointmentID))
}

func (e *Events) CustomerRegistered(ctx context.Context, pl payload.Customer) error {
	return e.publish(ctx, events.TopicCustomerRegistered, pl, WithKey(pl.CustomerID))
}

func (e *Events) CustomerUpdated(ctx context.Context, pl payload.Customer) error {
	return e.publish(ctx, events.TopicCustomerUpdated, pl, WithKey(pl.CustomerID))
}

func (e *Events) NotificationRequested(ctx context.Context, pl payload.NotificationRequested) error {
	return e.publish(ctx, events.TopicNotificationRequested, pl)
}

func (e *Events) SignificantPriceChange(ctx context.Context, pl payload.SignificantPriceChange, opts ...PublishOption) error {
	opts = append(opts, WithKey(pl.ProductID))
	return e.publish(ctx, events.TopicPricingSignificantChange, pl, opts...)
}

func (e *Events) PricingRulesApplied(ctx context.Context, pl payload.PricingRulesApplied) error {
	return e.publish(ctx, events.TopicPricingRulesApplied, pl, WithKey(pl.ProductID))
}

func (e *Events) SearchIndexRebuilt(ctx context.Context, pl payload.SearchIndexRebuilt) error {
	return e.publish(ctx, events.TopicSearchIndexRebuilt, pl)
}

func (e *Events) JobCompleted(ctx context.Context, pl payload.JobCompleted) error {
	return e.publish(ctx, events.TopicJobCompleted, pl, WithKey(pl.Job))
}

func (e *Events) JobFailed(ctx context.Context, pl payload.JobFailed) error {
	return e.publish(ctx, events.TopicJobFailed, pl, WithKey(pl.Job))
}
