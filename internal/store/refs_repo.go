package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// RefRepository answers the referential-safety questions the purge job asks
// before removing a product: does any order reference it, how many reviews
// does it have.
type RefRepository struct {
	orders  *mongo.Collection
	reviews *mongo.Collection
}

func NewRefRepository(client *mongo.Client, cfg Config) *RefRepository {
	db := client.Database(cfg.Database)
	return &RefRepository{
		orders:  db.Collection(collOrders),
		reviews: db.Collection(collReviews),
	}
}

// HasOrderHistory reports whether any order line references the product.
func (r *RefRepository) HasOrderHistory(ctx context.Context, productID string) (bool, error) {
	n, err := r.orders.CountDocuments(ctx,
		bson.D{{Key: "items.productId", Value: productID}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to count orders for %s: %w", productID, err)
	}
	return n > 0, nil
}

// ReviewCount returns the number of reviews for the product.
func (r *RefRepository) ReviewCount(ctx context.Context, productID string) (int, error) {
	n, err := r.reviews.CountDocuments(ctx, bson.D{{Key: "productId", Value: productID}})
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews for %s: %w", productID, err)
	}
	return int(n), nil
}
