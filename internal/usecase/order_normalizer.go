package usecase

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"cloud-commerce-portal/internal/domain"
	"cloud-commerce-portal/internal/domain/model"
	"cloud-commerce-portal/internal/domain/ports/repository"
)

var daysPerYear = decimal.NewFromInt(365)

// OrderNormalizer validates a caller-submitted order against the rules of a
// specific commerce operation and computes the derived fields the caller is
// not trusted to supply, most importantly the prorated seat charge. Each
// Normalize method returns a normalized copy; the submitted order is never
// mutated.
type OrderNormalizer struct {
	offers repository.OfferRepository
	subs   repository.SubscriptionRepository
	now    func() time.Time
}

func NewOrderNormalizer(offers repository.OfferRepository, subs repository.SubscriptionRepository) *OrderNormalizer {
	return &OrderNormalizer{offers: offers, subs: subs, now: time.Now}
}

// NormalizePurchase validates a new-purchase order: non-empty line items,
// positive quantities, and every referenced offer known to the catalog.
func (n *OrderNormalizer) NormalizePurchase(ctx context.Context, order *model.OrderRequest) (*model.OrderRequest, error) {
	if err := checkShape(order); err != nil {
		return nil, err
	}
	out := &model.OrderRequest{CustomerID: order.CustomerID, Operation: model.OperationNewPurchase}
	for _, li := range order.LineItems {
		if li.OfferID == "" {
			return nil, domain.Validation("line item is missing an offer id")
		}
		if li.Quantity <= 0 {
			return nil, domain.Validation("quantity must be positive for offer %s", li.OfferID)
		}
		if _, err := n.offers.FindByID(ctx, nil, li.OfferID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.Validation("unknown offer %s", li.OfferID)
			}
			return nil, err
		}
		out.LineItems = append(out.LineItems, model.OrderLineItem{OfferID: li.OfferID, Quantity: li.Quantity})
	}
	return out, nil
}

// NormalizeAdditionalSeats validates a seat-addition order: exactly one line
// item naming a subscription the customer owns, positive quantity. It fills
// in the offer, the subscription expiry and the prorated per-seat charge.
func (n *OrderNormalizer) NormalizeAdditionalSeats(ctx context.Context, order *model.OrderRequest) (*model.OrderRequest, error) {
	li, err := n.singleSubscriptionItem(ctx, order)
	if err != nil {
		return nil, err
	}
	sub, offer, err := n.resolveSubscription(ctx, order.CustomerID, li.SubscriptionID)
	if err != nil {
		return nil, err
	}
	return &model.OrderRequest{
		CustomerID: order.CustomerID,
		Operation:  model.OperationAdditionalSeats,
		LineItems: []model.OrderLineItem{{
			OfferID:            offer.ID,
			SubscriptionID:     sub.SubscriptionID,
			Quantity:           li.Quantity,
			SeatPrice:          ProratedSeatCharge(n.now(), sub.ExpiryDate, offer.Price),
			SubscriptionExpiry: sub.ExpiryDate,
		}},
	}, nil
}

// NormalizeRenewal validates a renewal order: exactly one line item naming a
// subscription the customer owns. The seat price is the offer's full yearly
// rate; the authoritative quantity comes later from the upstream API.
func (n *OrderNormalizer) NormalizeRenewal(ctx context.Context, order *model.OrderRequest) (*model.OrderRequest, error) {
	li, err := n.singleSubscriptionItem(ctx, order)
	if err != nil {
		return nil, err
	}
	sub, offer, err := n.resolveSubscription(ctx, order.CustomerID, li.SubscriptionID)
	if err != nil {
		return nil, err
	}
	return &model.OrderRequest{
		CustomerID: order.CustomerID,
		Operation:  model.OperationRenewal,
		LineItems: []model.OrderLineItem{{
			OfferID:            offer.ID,
			SubscriptionID:     sub.SubscriptionID,
			Quantity:           li.Quantity,
			SeatPrice:          offer.Price,
			SubscriptionExpiry: sub.ExpiryDate,
		}},
	}, nil
}

func (n *OrderNormalizer) singleSubscriptionItem(ctx context.Context, order *model.OrderRequest) (*model.OrderLineItem, error) {
	if err := checkShape(order); err != nil {
		return nil, err
	}
	if len(order.LineItems) != 1 {
		return nil, domain.Validation("operation requires exactly one line item, got %d", len(order.LineItems))
	}
	li := order.LineItems[0]
	if li.SubscriptionID == "" {
		return nil, domain.Validation("line item is missing a subscription id")
	}
	if li.Quantity <= 0 {
		return nil, domain.Validation("quantity must be positive for subscription %s", li.SubscriptionID)
	}
	return &li, nil
}

// resolveSubscription looks up the customer's persisted subscription and its
// catalog offer. Lookups are keyed by customer id, so a subscription owned
// by someone else is indistinguishable from a missing one.
func (n *OrderNormalizer) resolveSubscription(ctx context.Context, customerID, subscriptionID string) (*model.CustomerSubscription, *model.PartnerOffer, error) {
	sub, err := n.subs.FindByCustomerAndID(ctx, nil, customerID, subscriptionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.Validation("subscription %s does not exist or does not belong to customer %s", subscriptionID, customerID)
		}
		return nil, nil, err
	}
	offer, err := n.offers.FindByID(ctx, nil, sub.OfferID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.Validation("subscription %s references unknown offer %s", subscriptionID, sub.OfferID)
		}
		return nil, nil, err
	}
	return sub, offer, nil
}

func checkShape(order *model.OrderRequest) error {
	if order == nil {
		return domain.Validation("order is required")
	}
	if order.CustomerID == "" {
		return domain.Validation("order is missing a customer id")
	}
	if len(order.LineItems) == 0 {
		return domain.Validation("order has no line items")
	}
	return nil
}

// ProratedSeatCharge computes the charge for one extra seat for the
// remainder of a subscription's term: dailyRate = yearlyRate/365, times the
// remaining days until expiry rounded up and clamped to [0, 365]. Rounding
// to currency precision is the caller's job at the point the charge is
// applied to a quantity; rounding the per-day rate would compound the error.
func ProratedSeatCharge(now, expiry time.Time, yearlyRatePerSeat decimal.Decimal) decimal.Decimal {
	remainingDays := math.Ceil(expiry.UTC().Sub(now.UTC()).Hours() / 24)
	if remainingDays <= 0 {
		return decimal.Zero
	}
	if remainingDays >= 365 {
		return yearlyRatePerSeat
	}
	dailyRate := yearlyRatePerSeat.Div(daysPerYear)
	return dailyRate.Mul(decimal.NewFromInt(int64(remainingDays)))
}
