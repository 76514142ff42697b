package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommerceOperationType tags what kind of commerce operation produced a
// ledger record or order.
type CommerceOperationType string

const (
	OperationNewPurchase     CommerceOperationType = "NewPurchase"
	OperationAdditionalSeats CommerceOperationType = "AdditionalSeatsPurchase"
	OperationRenewal         CommerceOperationType = "Renewal"
)

// OrderRequest is the caller-supplied order. It is mutable until a
// normalizer has validated it; normalizers return a normalized copy with
// derived fields (seat price, expiry) filled in, and the orchestrator only
// ever works on that copy.
type OrderRequest struct {
	CustomerID string
	Operation  CommerceOperationType
	LineItems  []OrderLineItem
}

// OrderLineItem is one requested (offer-or-subscription, quantity) pair.
// SeatPrice and SubscriptionExpiry are derived fields: callers must not
// supply them, the normalizer computes them for seat and renewal operations.
type OrderLineItem struct {
	OfferID            string
	SubscriptionID     string
	Quantity           int
	SeatPrice          decimal.Decimal
	SubscriptionExpiry time.Time
}

// PurchaseLineItem pairs a portal offer with a quantity for a new purchase.
type PurchaseLineItem struct {
	OfferID  string
	Quantity int
}

// PurchaseLineItemWithOffer binds a purchase line item to the resolved
// catalog offer it is requesting.
type PurchaseLineItemWithOffer struct {
	LineItem PurchaseLineItem
	Offer    *PartnerOffer
}

// UpstreamOrder is the order shape the partner API accepts. Subscription ids
// on the line items are assigned by the upstream when the order is placed.
type UpstreamOrder struct {
	ID                  string
	ReferenceCustomerID string
	LineItems           []UpstreamOrderLineItem
}

type UpstreamOrderLineItem struct {
	LineItemNumber int
	OfferID        string
	Quantity       int
	SubscriptionID string
}

// UpstreamSubscription mirrors the partner API's view of a subscription.
type UpstreamSubscription struct {
	ID                string
	OfferID           string
	Quantity          int
	Status            string
	CommitmentEndDate time.Time
}

// TransactionResult is the caller-visible outcome of one commerce operation.
type TransactionResult struct {
	LineItems   []TransactionResultLineItem
	CompletedAt time.Time
}

// TransactionResultLineItem summarizes one line item's outcome.
type TransactionResultLineItem struct {
	SubscriptionID string
	OfferID        string
	Quantity       int
	SeatPrice      decimal.Decimal
	AmountCharged  decimal.Decimal
}
