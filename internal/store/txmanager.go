package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"

	"github.com/neel2751/lomashwood-product-service/internal/domain"
)

// TxManager runs a function inside a database transaction.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(txCtx context.Context) (any, error)) (any, error)
}

type txManager struct {
	client *mongo.Client
	log    *zap.Logger
}

// NewTxManager creates a TxManager over the mongo client.
func NewTxManager(client *mongo.Client, log *zap.Logger) TxManager {
	return &txManager{client: client, log: log}
}

// isTransientTxError checks the driver's transient transaction label.
func isTransientTxError(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.HasErrorLabel("TransientTransactionError")
	}
	return false
}

func (t *txManager) WithTransaction(ctx context.Context, fn func(txCtx context.Context) (any, error)) (any, error) {
	const maxAttempts = 3

	var result any
	var err error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		session, sessErr := t.client.StartSession()
		if sessErr != nil {
			return nil, fmt.Errorf("failed to start session: %w", sessErr)
		}

		result, err = session.WithTransaction(ctx, func(txCtx context.Context) (any, error) {
			return fn(txCtx)
		})
		session.EndSession(ctx)

		if err == nil {
			return result, nil
		}

		if isTransientTxError(err) && attempt < maxAttempts {
			t.log.Warn("transient transaction error, retrying",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			continue
		}
		break
	}

	if isTransientTxError(err) {
		err = fmt.Errorf("%w: %v", domain.ErrTransient, err)
	}
	return result, fmt.Errorf("transaction failed: %w", err)
}
