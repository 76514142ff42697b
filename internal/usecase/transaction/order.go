package transaction

import (
	"context"

	"cloud-commerce-portal/internal/domain"
	"cloud-commerce-portal/internal/domain/model"
	"cloud-commerce-portal/internal/domain/ports/adapter"
)

// PlaceOrder submits a purchase order to the upstream partner API.
type PlaceOrder struct {
	partner    adapter.PartnerClient
	customerID string
	order      *model.UpstreamOrder

	// Result is the placed order with upstream-assigned subscription ids.
	Result *model.UpstreamOrder
}

func NewPlaceOrder(partner adapter.PartnerClient, customerID string, order *model.UpstreamOrder) *PlaceOrder {
	return &PlaceOrder{partner: partner, customerID: customerID, order: order}
}

func (t *PlaceOrder) Name() string { return "place-order" }

func (t *PlaceOrder) Execute(ctx context.Context) error {
	placed, err := t.partner.PlaceOrder(ctx, t.customerID, t.order)
	if err != nil {
		return asUpstreamError(err)
	}
	t.Result = placed
	return nil
}

func (t *PlaceOrder) Rollback(ctx context.Context) error {
	if t.Result == nil {
		return nil
	}
	return t.partner.CancelOrder(ctx, t.customerID, t.Result.ID)
}

// PurchaseExtraSeats increases the seat count of an existing upstream
// subscription; rollback decreases it back by the same amount.
type PurchaseExtraSeats struct {
	partner        adapter.PartnerClient
	customerID     string
	subscriptionID string
	seats          int

	Result *model.UpstreamSubscription
}

func NewPurchaseExtraSeats(partner adapter.PartnerClient, customerID, subscriptionID string, seats int) *PurchaseExtraSeats {
	return &PurchaseExtraSeats{partner: partner, customerID: customerID, subscriptionID: subscriptionID, seats: seats}
}

func (t *PurchaseExtraSeats) Name() string { return "purchase-extra-seats" }

func (t *PurchaseExtraSeats) Execute(ctx context.Context) error {
	sub, err := t.partner.AddSeats(ctx, t.customerID, t.subscriptionID, t.seats)
	if err != nil {
		return asUpstreamError(err)
	}
	t.Result = sub
	return nil
}

func (t *PurchaseExtraSeats) Rollback(ctx context.Context) error {
	if t.Result == nil {
		return nil
	}
	_, err := t.partner.AddSeats(ctx, t.customerID, t.subscriptionID, -t.seats)
	return err
}

// RenewSubscription extends an existing upstream subscription's term by one
// period.
type RenewSubscription struct {
	partner        adapter.PartnerClient
	customerID     string
	subscriptionID string

	Result *model.UpstreamSubscription
}

func NewRenewSubscription(partner adapter.PartnerClient, customerID, subscriptionID string) *RenewSubscription {
	return &RenewSubscription{partner: partner, customerID: customerID, subscriptionID: subscriptionID}
}

func (t *RenewSubscription) Name() string { return "renew-subscription" }

func (t *RenewSubscription) Execute(ctx context.Context) error {
	sub, err := t.partner.RenewSubscription(ctx, t.customerID, t.subscriptionID)
	if err != nil {
		return asUpstreamError(err)
	}
	t.Result = sub
	return nil
}

func (t *RenewSubscription) Rollback(ctx context.Context) error {
	if t.Result == nil {
		return nil
	}
	return t.partner.CancelRenewal(ctx, t.customerID, t.subscriptionID)
}

func asUpstreamError(err error) error {
	if domain.KindOf(err) != domain.KindUnknown {
		return err
	}
	return domain.Upstream(err)
}
