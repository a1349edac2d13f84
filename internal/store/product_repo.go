package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/neel2751/lomashwood-product-service/internal/domain"
)

// ProductRepository persists catalog products.
type ProductRepository struct {
	coll *mongo.Collection
}

func NewProductRepository(client *mongo.Client, cfg Config) *ProductRepository {
	return &ProductRepository{coll: client.Database(cfg.Database).Collection(collProducts)}
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find product %s: %w", id, err)
	}
	return &p, nil
}

// FindActive returns every non-deleted active product, the candidate set for
// the inventory-sync, repricing and index-rebuild jobs.
func (r *ProductRepository) FindActive(ctx context.Context) ([]*domain.Product, error) {
	return withTransientRetry(ctx, func(ctx context.Context) ([]*domain.Product, error) {
		filter := bson.D{
			{Key: "isActive", Value: true},
			{Key: "deletedAt", Value: nil},
		}
		return r.findAll(ctx, filter)
	})
}

// FindInactiveSince returns active=false products untouched since the cutoff.
func (r *ProductRepository) FindInactiveSince(ctx context.Context, cutoff time.Time) ([]*domain.Product, error) {
	return withTransientRetry(ctx, func(ctx context.Context) ([]*domain.Product, error) {
		filter := bson.D{
			{Key: "isActive", Value: false},
			{Key: "deletedAt", Value: nil},
			{Key: "updatedAt", Value: bson.D{{Key: "$lte", Value: cutoff}}},
		}
		return r.findAll(ctx, filter)
	})
}

// FindByIDs returns the non-deleted products among the given ids.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	filter := bson.D{
		{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}},
		{Key: "deletedAt", Value: nil},
	}
	return r.findAll(ctx, filter)
}

func (r *ProductRepository) findAll(ctx context.Context, filter bson.D) ([]*domain.Product, error) {
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var products []*domain.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// UpdatePrice writes the new price and bumps updatedAt.
func (r *ProductRepository) UpdatePrice(ctx context.Context, id string, newPrice float64) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "price", Value: newPrice},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
	)
	if err != nil {
		return fmt.Errorf("failed to update price of %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// SoftDelete flags the product deleted without removing the document.
func (r *ProductRepository) SoftDelete(ctx context.Context, id string) error {
	now := time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "isActive", Value: false},
			{Key: "deletedAt", Value: now},
			{Key: "updatedAt", Value: now},
		}}},
	)
	if err != nil {
		return fmt.Errorf("failed to soft-delete product %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// HardDelete removes the product document permanently.
func (r *ProductRepository) HardDelete(ctx context.Context, id string) error {
	_, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("failed to hard-delete product %s: %w", id, err)
	}
	return nil
}
