package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cloud-commerce-portal/internal/domain/model"
)

// NoopGateway approves everything. Development and seeding only.
type NoopGateway struct{}

func NewNoopGateway() *NoopGateway { return &NoopGateway{} }

func (NoopGateway) Name() string { return "noop" }

func (NoopGateway) Authorize(_ context.Context, amount decimal.Decimal, currency, _ string) (*model.PaymentAuthorization, error) {
	return &model.PaymentAuthorization{
		AuthorizationID: "noop-auth-" + uuid.NewString(),
		Amount:          amount,
		Currency:        currency,
		CreatedAt:       time.Now(),
	}, nil
}

func (NoopGateway) Capture(_ context.Context, authorizationID string, amount decimal.Decimal) (*model.CaptureReceipt, error) {
	return &model.CaptureReceipt{
		CaptureID:       "noop-capture-" + uuid.NewString(),
		AuthorizationID: authorizationID,
		Amount:          amount,
		CapturedAt:      time.Now(),
	}, nil
}

func (NoopGateway) VoidAuthorization(context.Context, string) error { return nil }

func (NoopGateway) Refund(context.Context, string, decimal.Decimal) error { return nil }
