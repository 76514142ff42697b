//go:build !integration

package transaction_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"cloud-commerce-portal/internal/domain"
	"cloud-commerce-portal/internal/domain/model"
	"cloud-commerce-portal/internal/domain/ports/adapter"
	"cloud-commerce-portal/internal/domain/ports/repository"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// ---- Mock payment gateway ----

type MockPaymentGateway struct {
	AuthorizeFunc func(ctx context.Context, amount decimal.Decimal, currency, description string) (*model.PaymentAuthorization, error)
	CaptureFunc   func(ctx context.Context, authorizationID string, amount decimal.Decimal) (*model.CaptureReceipt, error)
	VoidFunc      func(ctx context.Context, authorizationID string) error
	RefundFunc    func(ctx context.Context, captureID string, amount decimal.Decimal) error

	VoidedIDs   []string
	RefundedIDs []string
}

var _ adapter.PaymentGateway = (*MockPaymentGateway)(nil)

func (m *MockPaymentGateway) Name() string { return "mockpay" }

func (m *MockPaymentGateway) Authorize(ctx context.Context, amount decimal.Decimal, currency, description string) (*model.PaymentAuthorization, error) {
	if m.AuthorizeFunc != nil {
		return m.AuthorizeFunc(ctx, amount, currency, description)
	}
	return &model.PaymentAuthorization{AuthorizationID: "auth-1", Amount: amount, Currency: currency}, nil
}

func (m *MockPaymentGateway) Capture(ctx context.Context, authorizationID string, amount decimal.Decimal) (*model.CaptureReceipt, error) {
	if m.CaptureFunc != nil {
		return m.CaptureFunc(ctx, authorizationID, amount)
	}
	return &model.CaptureReceipt{CaptureID: "cap-1", AuthorizationID: authorizationID, Amount: amount}, nil
}

func (m *MockPaymentGateway) VoidAuthorization(ctx context.Context, authorizationID string) error {
	m.VoidedIDs = append(m.VoidedIDs, authorizationID)
	if m.VoidFunc != nil {
		return m.VoidFunc(ctx, authorizationID)
	}
	return nil
}

func (m *MockPaymentGateway) Refund(ctx context.Context, captureID string, amount decimal.Decimal) error {
	m.RefundedIDs = append(m.RefundedIDs, captureID)
	if m.RefundFunc != nil {
		return m.RefundFunc(ctx, captureID, amount)
	}
	return nil
}

// ---- Mock partner client ----

type MockPartnerClient struct {
	PlaceOrderFunc        func(ctx context.Context, customerID string, order *model.UpstreamOrder) (*model.UpstreamOrder, error)
	CancelOrderFunc       func(ctx context.Context, customerID, orderID string) error
	GetSubscriptionFunc   func(ctx context.Context, customerID, subscriptionID string) (*model.UpstreamSubscription, error)
	AddSeatsFunc          func(ctx context.Context, customerID, subscriptionID string, count int) (*model.UpstreamSubscription, error)
	RenewFunc             func(ctx context.Context, customerID, subscriptionID string) (*model.UpstreamSubscription, error)
	CancelRenewalFunc     func(ctx context.Context, customerID, subscriptionID string) error
	CancelledOrderIDs     []string
	SeatDeltas            []int
	CancelledRenewals     []string
	RenewedSubscriptionID string
}

var _ adapter.PartnerClient = (*MockPartnerClient)(nil)

func (m *MockPartnerClient) PlaceOrder(ctx context.Context, customerID string, order *model.UpstreamOrder) (*model.UpstreamOrder, error) {
	if m.PlaceOrderFunc != nil {
		return m.PlaceOrderFunc(ctx, customerID, order)
	}
	placed := &model.UpstreamOrder{ID: "ord-1", ReferenceCustomerID: order.ReferenceCustomerID}
	for i, li := range order.LineItems {
		li.SubscriptionID = "sub-" + string(rune('a'+i))
		placed.LineItems = append(placed.LineItems, li)
	}
	return placed, nil
}

func (m *MockPartnerClient) CancelOrder(ctx context.Context, customerID, orderID string) error {
	m.CancelledOrderIDs = append(m.CancelledOrderIDs, orderID)
	if m.CancelOrderFunc != nil {
		return m.CancelOrderFunc(ctx, customerID, orderID)
	}
	return nil
}

func (m *MockPartnerClient) GetSubscription(ctx context.Context, customerID, subscriptionID string) (*model.UpstreamSubscription, error) {
	if m.GetSubscriptionFunc != nil {
		return m.GetSubscriptionFunc(ctx, customerID, subscriptionID)
	}
	return &model.UpstreamSubscription{ID: subscriptionID, Quantity: 1, Status: "active"}, nil
}

func (m *MockPartnerClient) AddSeats(ctx context.Context, customerID, subscriptionID string, count int) (*model.UpstreamSubscription, error) {
	m.SeatDeltas = append(m.SeatDeltas, count)
	if m.AddSeatsFunc != nil {
		return m.AddSeatsFunc(ctx, customerID, subscriptionID, count)
	}
	return &model.UpstreamSubscription{ID: subscriptionID, Quantity: count, Status: "active"}, nil
}

func (m *MockPartnerClient) RenewSubscription(ctx context.Context, customerID, subscriptionID string) (*model.UpstreamSubscription, error) {
	m.RenewedSubscriptionID = subscriptionID
	if m.RenewFunc != nil {
		return m.RenewFunc(ctx, customerID, subscriptionID)
	}
	return &model.UpstreamSubscription{ID: subscriptionID, Quantity: 1, Status: "active"}, nil
}

func (m *MockPartnerClient) CancelRenewal(ctx context.Context, customerID, subscriptionID string) error {
	m.CancelledRenewals = append(m.CancelledRenewals, subscriptionID)
	if m.CancelRenewalFunc != nil {
		return m.CancelRenewalFunc(ctx, customerID, subscriptionID)
	}
	return nil
}

// ---- In-memory repositories ----

type memSubscriptionRepo struct {
	mu        sync.RWMutex
	store     map[string]*model.CustomerSubscription // customerID + "/" + subscriptionID
	upsertErr error
	deleteErr error
}

func newMemSubscriptionRepo() *memSubscriptionRepo {
	return &memSubscriptionRepo{store: make(map[string]*model.CustomerSubscription)}
}

func subKey(customerID, subscriptionID string) string { return customerID + "/" + subscriptionID }

func (m *memSubscriptionRepo) Upsert(ctx context.Context, tx repository.Tx, sub *model.CustomerSubscription) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sub
	m.store[subKey(sub.CustomerID, sub.SubscriptionID)] = &cp
	return nil
}

func (m *memSubscriptionRepo) Delete(ctx context.Context, tx repository.Tx, customerID, subscriptionID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, subKey(customerID, subscriptionID))
	return nil
}

func (m *memSubscriptionRepo) FindByCustomerAndID(ctx context.Context, tx repository.Tx, customerID, subscriptionID string) (*model.CustomerSubscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[subKey(customerID, subscriptionID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSubscriptionRepo) ListByCustomer(ctx context.Context, tx repository.Tx, customerID string) ([]*model.CustomerSubscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.CustomerSubscription
	for _, s := range m.store {
		if s.CustomerID == customerID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memSubscriptionRepo) ListExpiringBefore(ctx context.Context, tx repository.Tx, cutoff time.Time) ([]*model.CustomerSubscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.CustomerSubscription
	for _, s := range m.store {
		if s.ExpiryDate.Before(cutoff) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memPurchaseRepo struct {
	mu        sync.RWMutex
	store     map[string]*model.CustomerPurchase
	appendErr error
	deleteErr error
}

func newMemPurchaseRepo() *memPurchaseRepo {
	return &memPurchaseRepo{store: make(map[string]*model.CustomerPurchase)}
}

func (m *memPurchaseRepo) Append(ctx context.Context, tx repository.Tx, p *model.CustomerPurchase) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memPurchaseRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, id)
	return nil
}

func (m *memPurchaseRepo) ListByCustomer(ctx context.Context, tx repository.Tx, customerID string) ([]*model.CustomerPurchase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.CustomerPurchase
	for _, p := range m.store {
		if p.CustomerID == customerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}
