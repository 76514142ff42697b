package partner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"cloud-commerce-portal/internal/domain"
	"cloud-commerce-portal/internal/domain/model"
)

// FakeClient is an in-memory partner for development. It assigns identifiers
// the way the real partner does and keeps per-customer subscription state so
// seat adjustments and renewals behave consistently across calls.
type FakeClient struct {
	mu   sync.Mutex
	subs map[string]*model.UpstreamSubscription // key: customerID + "/" + subscriptionID
}

func NewFakeClient() *FakeClient {
	return &FakeClient{subs: make(map[string]*model.UpstreamSubscription)}
}

func key(customerID, subscriptionID string) string { return customerID + "/" + subscriptionID }

func (f *FakeClient) PlaceOrder(_ context.Context, customerID string, order *model.UpstreamOrder) (*model.UpstreamOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	placed := &model.UpstreamOrder{
		ID:                  "ord-" + ulid.Make().String(),
		ReferenceCustomerID: order.ReferenceCustomerID,
	}
	for _, li := range order.LineItems {
		subID := "sub-" + ulid.Make().String()
		f.subs[key(customerID, subID)] = &model.UpstreamSubscription{
			ID:                subID,
			OfferID:           li.OfferID,
			Quantity:          li.Quantity,
			Status:            "active",
			CommitmentEndDate: time.Now().AddDate(1, 0, 0),
		}
		placed.LineItems = append(placed.LineItems, model.UpstreamOrderLineItem{
			LineItemNumber: li.LineItemNumber,
			OfferID:        li.OfferID,
			Quantity:       li.Quantity,
			SubscriptionID: subID,
		})
	}
	return placed, nil
}

func (f *FakeClient) CancelOrder(context.Context, string, string) error { return nil }

func (f *FakeClient) GetSubscription(_ context.Context, customerID, subscriptionID string) (*model.UpstreamSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub, ok := f.subs[key(customerID, subscriptionID)]
	if !ok {
		return nil, domain.Upstream(fmt.Errorf("subscription %s: %w", subscriptionID, domain.ErrNotFound))
	}
	cp := *sub
	return &cp, nil
}

func (f *FakeClient) AddSeats(_ context.Context, customerID, subscriptionID string, count int) (*model.UpstreamSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub, ok := f.subs[key(customerID, subscriptionID)]
	if !ok {
		return nil, domain.Upstream(fmt.Errorf("subscription %s: %w", subscriptionID, domain.ErrNotFound))
	}
	if sub.Quantity+count < 1 {
		return nil, domain.Upstream(fmt.Errorf("subscription %s: seat count cannot drop below one", subscriptionID))
	}
	sub.Quantity += count
	cp := *sub
	return &cp, nil
}

func (f *FakeClient) RenewSubscription(_ context.Context, customerID, subscriptionID string) (*model.UpstreamSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub, ok := f.subs[key(customerID, subscriptionID)]
	if !ok {
		return nil, domain.Upstream(fmt.Errorf("subscription %s: %w", subscriptionID, domain.ErrNotFound))
	}
	sub.CommitmentEndDate = sub.CommitmentEndDate.AddDate(1, 0, 0)
	cp := *sub
	return &cp, nil
}

func (f *FakeClient) CancelRenewal(_ context.Context, customerID, subscriptionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub, ok := f.subs[key(customerID, subscriptionID)]
	if !ok {
		return domain.Upstream(fmt.Errorf("subscription %s: %w", subscriptionID, domain.ErrNotFound))
	}
	sub.CommitmentEndDate = sub.CommitmentEndDate.AddDate(-1, 0, 0)
	return nil
}
