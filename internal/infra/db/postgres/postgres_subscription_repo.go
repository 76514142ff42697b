package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"cloud-commerce-portal/internal/domain"
	"cloud-commerce-portal/internal/domain/model"
	"cloud-commerce-portal/internal/domain/ports/repository"
)

// Ensure subscriptionRepo implements repository.SubscriptionRepository
var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

func (r *subscriptionRepo) Upsert(ctx context.Context, tx repository.Tx, s *model.CustomerSubscription) error {
	const q = `
INSERT INTO customer_subscriptions (customer_id, subscription_id, offer_id, expiry_date)
VALUES ($1,$2,$3,$4)
ON CONFLICT (customer_id, subscription_id) DO UPDATE SET
  offer_id=$3, expiry_date=$4;`

	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, s.CustomerID, s.SubscriptionID, s.OfferID, s.ExpiryDate)
	return err
}

func (r *subscriptionRepo) Delete(ctx context.Context, tx repository.Tx, customerID, subscriptionID string) error {
	const q = `DELETE FROM customer_subscriptions WHERE customer_id=$1 AND subscription_id=$2;`

	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, customerID, subscriptionID)
	return err
}

func (r *subscriptionRepo) FindByCustomerAndID(ctx context.Context, tx repository.Tx, customerID, subscriptionID string) (*model.CustomerSubscription, error) {
	const q = `
SELECT customer_id, subscription_id, offer_id, expiry_date
  FROM customer_subscriptions
 WHERE customer_id=$1 AND subscription_id=$2;`

	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var s model.CustomerSubscription
	err = ex.QueryRow(ctx, q, customerID, subscriptionID).Scan(&s.CustomerID, &s.SubscriptionID, &s.OfferID, &s.ExpiryDate)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *subscriptionRepo) ListByCustomer(ctx context.Context, tx repository.Tx, customerID string) ([]*model.CustomerSubscription, error) {
	const q = `
SELECT customer_id, subscription_id, offer_id, expiry_date
  FROM customer_subscriptions
 WHERE customer_id=$1
 ORDER BY expiry_date;`

	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

func (r *subscriptionRepo) ListExpiringBefore(ctx context.Context, tx repository.Tx, cutoff time.Time) ([]*model.CustomerSubscription, error) {
	const q = `
SELECT customer_id, subscription_id, offer_id, expiry_date
  FROM customer_subscriptions
 WHERE expiry_date < $1
 ORDER BY expiry_date;`

	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

func scanSubscriptions(rows pgx.Rows) ([]*model.CustomerSubscription, error) {
	var out []*model.CustomerSubscription
	for rows.Next() {
		var s model.CustomerSubscription
		if err := rows.Scan(&s.CustomerID, &s.SubscriptionID, &s.OfferID, &s.ExpiryDate); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
