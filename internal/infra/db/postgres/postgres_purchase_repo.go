package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"cloud-commerce-portal/internal/domain"
	"cloud-commerce-portal/internal/domain/model"
	"cloud-commerce-portal/internal/domain/ports/repository"
)

// Ensure purchaseRepo implements repository.PurchaseRepository
var _ repository.PurchaseRepository = (*purchaseRepo)(nil)

type purchaseRepo struct {
	pool *pgxpool.Pool
}

func NewPurchaseRepo(pool *pgxpool.Pool) *purchaseRepo {
	return &purchaseRepo{pool: pool}
}

func (r *purchaseRepo) Append(ctx context.Context, tx repository.Tx, pu *model.CustomerPurchase) error {
	const q = `
INSERT INTO customer_purchases (id, operation, customer_id, subscription_id, quantity, unit_price, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);`

	if pu.CreatedAt.IsZero() {
		pu.CreatedAt = time.Now().UTC()
	}
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err := ex.Exec(ctx, q, pu.ID, pu.Operation, pu.CustomerID, pu.SubscriptionID, pu.Quantity, pu.UnitPrice, pu.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *purchaseRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM customer_purchases WHERE id=$1;`

	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, id)
	return err
}

func (r *purchaseRepo) ListByCustomer(ctx context.Context, tx repository.Tx, customerID string) ([]*model.CustomerPurchase, error) {
	const q = `
SELECT id, operation, customer_id, subscription_id, quantity, unit_price, created_at
  FROM customer_purchases
 WHERE customer_id=$1
 ORDER BY created_at DESC;`

	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.CustomerPurchase
	for rows.Next() {
		var pu model.CustomerPurchase
		if err := rows.Scan(&pu.ID, &pu.Operation, &pu.CustomerID, &pu.SubscriptionID, &pu.Quantity, &pu.UnitPrice, &pu.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &pu)
	}
	return out, rows.Err()
}
