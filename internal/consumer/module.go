package consumer

import (
	"context"

	"go.uber.org/fx"

	"github.com/neel2751/lomashwood-product-service/internal/events"
	"github.com/neel2751/lomashwood-product-service/internal/store"
)

// Module provides the subscription manager and wires every handler to its
// topic on startup.
func Module() fx.Option {
	return fx.Module("consumer",
		fx.Provide(
			newConfig,
			NewManager,
			NewProductUpdatedHandler,
			NewInventoryUpdatedHandler,
			NewPriceChangedHandler,
			NewOrderHandlers,
			func(r *store.PriceHistoryRepository) PriceHistoryWriter { return r },
			func(r *store.InventoryRepository) InventoryAdjuster { return r },
			func(t store.TxManager) TxRunner { return t },
		),
		fx.Invoke(registerHandlers),
	)
}

func registerHandlers(
	lc fx.Lifecycle,
	m *Manager,
	cfg Config,
	product *ProductUpdatedHandler,
	inventory *InventoryUpdatedHandler,
	price *PriceChangedHandler,
	orders *OrderHandlers,
) error {
	policy := cfg.policy()

	registrations := []struct {
		topic   string
		handler HandlerFunc
	}{
		{events.TopicProductUpdated, product.Handle},
		{events.TopicInventoryUpdated, inventory.Handle},
		{events.TopicProductPriceChanged, price.Handle},
		{events.TopicOrderCreated, orders.HandleCreated},
		{events.TopicOrderCancelled, orders.HandleCancelled},
	}

	for _, reg := range registrations {
		if err := m.Subscribe(reg.topic, reg.handler, policy); err != nil {
			return err
		}
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			m.Close()
			return nil
		},
	})
	return nil
}
