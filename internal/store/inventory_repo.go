package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/neel2751/lomashwood-product-service/internal/domain"
)

// InventoryRepository persists per-product stock rows.
type InventoryRepository struct {
	coll *mongo.Collection
}

func NewInventoryRepository(client *mongo.Client, cfg Config) *InventoryRepository {
	return &InventoryRepository{coll: client.Database(cfg.Database).Collection(collInventory)}
}

func (r *InventoryRepository) FindByProductID(ctx context.Context, productID string) (*domain.Inventory, error) {
	var inv domain.Inventory
	err := r.coll.FindOne(ctx, bson.D{{Key: "productId", Value: productID}}).Decode(&inv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("inventory for product %s: %w", productID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find inventory for %s: %w", productID, err)
	}
	return &inv, nil
}

// Create inserts a fresh inventory row for a product.
func (r *InventoryRepository) Create(ctx context.Context, inv domain.Inventory) (*domain.Inventory, error) {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	inv.UpdatedAt = time.Now().UTC()
	if _, err := r.coll.InsertOne(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create inventory for %s: %w", inv.ProductID, err)
	}
	return &inv, nil
}

// Adjust atomically applies deltas to available and reserved stock. When
// availableDelta is negative the update is guarded so available stock can
// never go below zero; violating the guard returns ErrInsufficientStock and
// leaves the row unchanged.
func (r *InventoryRepository) Adjust(ctx context.Context, productID string, availableDelta, reservedDelta int) error {
	filter := bson.D{{Key: "productId", Value: productID}}
	if availableDelta < 0 {
		filter = append(filter, bson.E{Key: "availableStock", Value: bson.D{{Key: "$gte", Value: -availableDelta}}})
	}
	if reservedDelta < 0 {
		filter = append(filter, bson.E{Key: "reservedStock", Value: bson.D{{Key: "$gte", Value: -reservedDelta}}})
	}

	res, err := r.coll.UpdateOne(ctx, filter,
		bson.D{
			{Key: "$inc", Value: bson.D{
				{Key: "availableStock", Value: availableDelta},
				{Key: "reservedStock", Value: reservedDelta},
			}},
			{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to adjust inventory for %s: %w", productID, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// Distinguish a missing row from a guard violation.
	if _, err := r.FindByProductID(ctx, productID); err != nil {
		return err
	}
	return fmt.Errorf("product %s: %w", productID, domain.ErrInsufficientStock)
}

// FindZeroStockSince returns the product ids whose stock has been zero since
// the cutoff, the purge job's second candidate set.
func (r *InventoryRepository) FindZeroStockSince(ctx context.Context, cutoff time.Time) ([]string, error) {
	return withTransientRetry(ctx, func(ctx context.Context) ([]string, error) {
		filter := bson.D{
			{Key: "availableStock", Value: 0},
			{Key: "updatedAt", Value: bson.D{{Key: "$lte", Value: cutoff}}},
		}
		cursor, err := r.coll.Find(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to query zero-stock inventory: %w", err)
		}
		defer func() { _ = cursor.Close(ctx) }()

		var rows []domain.Inventory
		if err := cursor.All(ctx, &rows); err != nil {
			return nil, fmt.Errorf("failed to decode inventory rows: %w", err)
		}

		ids := make([]string, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ProductID)
		}
		return ids, nil
	})
}
