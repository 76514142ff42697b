package repository

import (
	"context"
	"time"

	"cloud-commerce-portal/internal/domain/model"
)

// SubscriptionRepository is the port for persisted customer subscriptions,
// keyed by (customer id, subscription id).
type SubscriptionRepository interface {
	Upsert(ctx context.Context, tx Tx, sub *model.CustomerSubscription) error
	Delete(ctx context.Context, tx Tx, customerID, subscriptionID string) error
	FindByCustomerAndID(ctx context.Context, tx Tx, customerID, subscriptionID string) (*model.CustomerSubscription, error)
	ListByCustomer(ctx context.Context, tx Tx, customerID string) ([]*model.CustomerSubscription, error)
	// ListExpiringBefore returns subscriptions whose expiry falls before cutoff,
	// used by the renewal-reminder worker.
	ListExpiringBefore(ctx context.Context, tx Tx, cutoff time.Time) ([]*model.CustomerSubscription, error)
}
