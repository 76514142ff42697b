package adapter

import (
	"context"

	"github.com/shopspring/decimal"

	"cloud-commerce-portal/internal/domain/model"
)

// PaymentGateway is the hex port for payment providers.
//
// Authorize places a hold, Capture settles against it, VoidAuthorization
// cancels an uncaptured hold and Refund reverses a capture. Implementations
// classify declines with domain.Payment(...) sub-kind codes so callers can
// act on the kind without knowing the provider.
type PaymentGateway interface {
	Name() string

	Authorize(ctx context.Context, amount decimal.Decimal, currency, description string) (*model.PaymentAuthorization, error)
	Capture(ctx context.Context, authorizationID string, amount decimal.Decimal) (*model.CaptureReceipt, error)
	VoidAuthorization(ctx context.Context, authorizationID string) error
	Refund(ctx context.Context, captureID string, amount decimal.Decimal) error
}
