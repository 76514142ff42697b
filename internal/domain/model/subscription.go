package model

import (
	"time"

	"cloud-commerce-portal/internal/domain"
)

// CustomerSubscription is the persisted record of a subscription a customer
// owns. It is created on first purchase and its expiry is extended on
// renewal. Keyed by (CustomerID, SubscriptionID).
type CustomerSubscription struct {
	CustomerID     string
	SubscriptionID string
	OfferID        string
	ExpiryDate     time.Time
}

// NewCustomerSubscription validates and constructs a subscription record.
func NewCustomerSubscription(customerID, subscriptionID, offerID string, expiry time.Time) (*CustomerSubscription, error) {
	if customerID == "" || subscriptionID == "" || offerID == "" || expiry.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	return &CustomerSubscription{
		CustomerID:     customerID,
		SubscriptionID: subscriptionID,
		OfferID:        offerID,
		ExpiryDate:     expiry.UTC(),
	}, nil
}
