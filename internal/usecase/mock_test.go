//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
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
// It writes to io.Discard to prevent logs from cluttering test output.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// -----------------------------
// In-memory repositories
// -----------------------------

type memOfferRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.PartnerOffer
	listErr error
}

func newMemOfferRepo() *memOfferRepo {
	return &memOfferRepo{store: make(map[string]*model.PartnerOffer)}
}

func (m *memOfferRepo) Save(ctx context.Context, tx repository.Tx, offer *model.PartnerOffer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *offer
	m.store[offer.ID] = &cp
	return nil
}

func (m *memOfferRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PartnerOffer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOfferRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.PartnerOffer, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.PartnerOffer, 0, len(m.store))
	for _, o := range m.store {
		cp := *o
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memSubscriptionRepo struct {
	mu        sync.RWMutex
	store     map[string]*model.CustomerSubscription
	upsertErr error
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
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// -----------------------------
// Mock adapters
// -----------------------------

type MockPaymentGateway struct {
	AuthorizeFunc func(ctx context.Context, amount decimal.Decimal, currency, description string) (*model.PaymentAuthorization, error)
	CaptureFunc   func(ctx context.Context, authorizationID string, amount decimal.Decimal) (*model.CaptureReceipt, error)

	AuthorizedAmounts []decimal.Decimal
	CapturedAmounts   []decimal.Decimal
	VoidedIDs         []string
	RefundedIDs       []string
}

var _ adapter.PaymentGateway = (*MockPaymentGateway)(nil)

func (m *MockPaymentGateway) Name() string { return "mockpay" }

func (m *MockPaymentGateway) Authorize(ctx context.Context, amount decimal.Decimal, currency, description string) (*model.PaymentAuthorization, error) {
	if m.AuthorizeFunc != nil {
		auth, err := m.AuthorizeFunc(ctx, amount, currency, description)
		if err != nil {
			return nil, err
		}
		m.AuthorizedAmounts = append(m.AuthorizedAmounts, amount)
		return auth, nil
	}
	m.AuthorizedAmounts = append(m.AuthorizedAmounts, amount)
	return &model.PaymentAuthorization{AuthorizationID: "auth-1", Amount: amount, Currency: currency}, nil
}

func (m *MockPaymentGateway) Capture(ctx context.Context, authorizationID string, amount decimal.Decimal) (*model.CaptureReceipt, error) {
	if m.CaptureFunc != nil {
		receipt, err := m.CaptureFunc(ctx, authorizationID, amount)
		if err != nil {
			return nil, err
		}
		m.CapturedAmounts = append(m.CapturedAmounts, amount)
		return receipt, nil
	}
	m.CapturedAmounts = append(m.CapturedAmounts, amount)
	return &model.CaptureReceipt{CaptureID: "cap-1", AuthorizationID: authorizationID, Amount: amount}, nil
}

func (m *MockPaymentGateway) VoidAuthorization(ctx context.Context, authorizationID string) error {
	m.VoidedIDs = append(m.VoidedIDs, authorizationID)
	return nil
}

func (m *MockPaymentGateway) Refund(ctx context.Context, captureID string, amount decimal.Decimal) error {
	m.RefundedIDs = append(m.RefundedIDs, captureID)
	return nil
}

type MockPartnerClient struct {
	PlaceOrderFunc      func(ctx context.Context, customerID string, order *model.UpstreamOrder) (*model.UpstreamOrder, error)
	GetSubscriptionFunc func(ctx context.Context, customerID, subscriptionID string) (*model.UpstreamSubscription, error)

	PlacedOrders      []*model.UpstreamOrder
	CancelledOrderIDs []string
	SeatDeltas        []int
	RenewedIDs        []string
	CancelledRenewals []string
}

var _ adapter.PartnerClient = (*MockPartnerClient)(nil)

func (m *MockPartnerClient) PlaceOrder(ctx context.Context, customerID string, order *model.UpstreamOrder) (*model.UpstreamOrder, error) {
	if m.PlaceOrderFunc != nil {
		placed, err := m.PlaceOrderFunc(ctx, customerID, order)
		if err != nil {
			return nil, err
		}
		m.PlacedOrders = append(m.PlacedOrders, placed)
		return placed, nil
	}
	placed := &model.UpstreamOrder{ID: "ord-1", ReferenceCustomerID: order.ReferenceCustomerID}
	for i, li := range order.LineItems {
		li.SubscriptionID = "sub-" + string(rune('a'+i))
		placed.LineItems = append(placed.LineItems, li)
	}
	m.PlacedOrders = append(m.PlacedOrders, placed)
	return placed, nil
}

func (m *MockPartnerClient) CancelOrder(ctx context.Context, customerID, orderID string) error {
	m.CancelledOrderIDs = append(m.CancelledOrderIDs, orderID)
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
	return &model.UpstreamSubscription{ID: subscriptionID, Quantity: count, Status: "active"}, nil
}

func (m *MockPartnerClient) RenewSubscription(ctx context.Context, customerID, subscriptionID string) (*model.UpstreamSubscription, error) {
	m.RenewedIDs = append(m.RenewedIDs, subscriptionID)
	return &model.UpstreamSubscription{ID: subscriptionID, Quantity: 1, Status: "active"}, nil
}

func (m *MockPartnerClient) CancelRenewal(ctx context.Context, customerID, subscriptionID string) error {
	m.CancelledRenewals = append(m.CancelledRenewals, subscriptionID)
	return nil
}
