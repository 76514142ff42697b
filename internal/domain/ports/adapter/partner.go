package adapter

import (
	"context"

	"cloud-commerce-portal/internal/domain/model"
)

// PartnerClient is the hex port for the upstream partner-management API that
// actually provisions subscriptions. All calls are network operations; the
// client reports rejections as domain.Upstream errors.
type PartnerClient interface {
	// PlaceOrder submits a purchase order. The returned order carries the
	// upstream-assigned order id and subscription ids per line item.
	PlaceOrder(ctx context.Context, customerID string, order *model.UpstreamOrder) (*model.UpstreamOrder, error)
	// CancelOrder voids a previously placed order, releasing its subscriptions.
	CancelOrder(ctx context.Context, customerID, orderID string) error

	GetSubscription(ctx context.Context, customerID, subscriptionID string) (*model.UpstreamSubscription, error)
	// AddSeats changes the seat count by count, which may be negative to
	// revert a previous increase.
	AddSeats(ctx context.Context, customerID, subscriptionID string, count int) (*model.UpstreamSubscription, error)
	// RenewSubscription extends the subscription's term by one period.
	RenewSubscription(ctx context.Context, customerID, subscriptionID string) (*model.UpstreamSubscription, error)
	// CancelRenewal reverts a renewal placed in the current billing window.
	CancelRenewal(ctx context.Context, customerID, subscriptionID string) error
}
