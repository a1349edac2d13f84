package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/neel2751/lomashwood-product-service/internal/domain"
)

// PriceHistoryRepository appends price-change records.
type PriceHistoryRepository struct {
	coll *mongo.Collection
}

func NewPriceHistoryRepository(client *mongo.Client, cfg Config) *PriceHistoryRepository {
	return &PriceHistoryRepository{coll: client.Database(cfg.Database).Collection(collPriceHistory)}
}

func (r *PriceHistoryRepository) Insert(ctx context.Context, h domain.PriceHistory) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	if h.ChangedAt.IsZero() {
		h.ChangedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, h); err != nil {
		return fmt.Errorf("failed to insert price history for %s: %w", h.ProductID, err)
	}
	return nil
}

// ArchiveRepository stores product snapshots taken before soft deletion.
type ArchiveRepository struct {
	coll *mongo.Collection
}

func NewArchiveRepository(client *mongo.Client, cfg Config) *ArchiveRepository {
	return &ArchiveRepository{coll: client.Database(cfg.Database).Collection(collArchive)}
}

func (r *ArchiveRepository) Insert(ctx context.Context, a domain.ProductArchive) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.ArchivedAt.IsZero() {
		a.ArchivedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("failed to archive product %s: %w", a.ProductID, err)
	}
	return nil
}
