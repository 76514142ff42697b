package model

import (
	"time"

	"github.com/shopspring/decimal"

	"cloud-commerce-portal/internal/domain"
)

// CustomerPurchase is one append-only ledger row recording a completed
// commerce operation. Rows are never mutated after creation; rollback of a
// failed transaction deletes the row it wrote.
type CustomerPurchase struct {
	ID             string
	Operation      CommerceOperationType
	CustomerID     string
	SubscriptionID string
	Quantity       int
	UnitPrice      decimal.Decimal
	CreatedAt      time.Time
}

// NewCustomerPurchase validates and constructs a ledger row.
func NewCustomerPurchase(op CommerceOperationType, id, customerID, subscriptionID string, quantity int, unitPrice decimal.Decimal, at time.Time) (*CustomerPurchase, error) {
	if id == "" || customerID == "" || subscriptionID == "" || quantity <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &CustomerPurchase{
		ID:             id,
		Operation:      op,
		CustomerID:     customerID,
		SubscriptionID: subscriptionID,
		Quantity:       quantity,
		UnitPrice:      unitPrice,
		CreatedAt:      at.UTC(),
	}, nil
}
