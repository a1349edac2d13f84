package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/neel2751/lomashwood-product-service/internal/domain"
)

// PricingRuleRepository reads the repricing configuration.
type PricingRuleRepository struct {
	coll *mongo.Collection
}

func NewPricingRuleRepository(client *mongo.Client, cfg Config) *PricingRuleRepository {
	return &PricingRuleRepository{coll: client.Database(cfg.Database).Collection(collPricingRules)}
}

// FindEnabled returns the enabled rules in insertion order. Application
// order matters: the repricing job folds rules exactly in this order.
func (r *PricingRuleRepository) FindEnabled(ctx context.Context) ([]domain.PricingRule, error) {
	return withTransientRetry(ctx, func(ctx context.Context) ([]domain.PricingRule, error) {
		cursor, err := r.coll.Find(ctx, bson.D{{Key: "enabled", Value: true}})
		if err != nil {
			return nil, fmt.Errorf("failed to query pricing rules: %w", err)
		}
		defer func() { _ = cursor.Close(ctx) }()

		var rules []domain.PricingRule
		if err := cursor.All(ctx, &rules); err != nil {
			return nil, fmt.Errorf("failed to decode pricing rules: %w", err)
		}
		return rules, nil
	})
}
