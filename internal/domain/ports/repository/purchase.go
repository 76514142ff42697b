package repository

import (
	"context"

	"cloud-commerce-portal/internal/domain/model"
)

// PurchaseRepository is the port for the append-only purchase ledger.
// Delete exists solely so a failed aggregate transaction can undo the row it
// wrote; completed rows are never touched again.
type PurchaseRepository interface {
	Append(ctx context.Context, tx Tx, purchase *model.CustomerPurchase) error
	Delete(ctx context.Context, tx Tx, id string) error
	ListByCustomer(ctx context.Context, tx Tx, customerID string) ([]*model.CustomerPurchase, error)
}
