//go:build !integration

package web

import (
	"context"
	"sync"
	"time"

	"cloud-commerce-portal/internal/domain"
	"cloud-commerce-portal/internal/domain/model"
	"cloud-commerce-portal/internal/domain/ports/repository"
	"cloud-commerce-portal/internal/usecase"
)

// ---- mock commerce use case ----

type mockCommerceUC struct {
	PurchaseFunc func(ctx context.Context, order *model.OrderRequest) (*model.TransactionResult, error)
	SeatsFunc    func(ctx context.Context, order *model.OrderRequest) (*model.TransactionResult, error)
	RenewFunc    func(ctx context.Context, order *model.OrderRequest) (*model.TransactionResult, error)
}

var _ usecase.CommerceUseCase = (*mockCommerceUC)(nil)

func (m *mockCommerceUC) Purchase(ctx context.Context, order *model.OrderRequest) (*model.TransactionResult, error) {
	if m.PurchaseFunc != nil {
		return m.PurchaseFunc(ctx, order)
	}
	return &model.TransactionResult{CompletedAt: time.Now()}, nil
}

func (m *mockCommerceUC) PurchaseAdditionalSeats(ctx context.Context, order *model.OrderRequest) (*model.TransactionResult, error) {
	if m.SeatsFunc != nil {
		return m.SeatsFunc(ctx, order)
	}
	return &model.TransactionResult{CompletedAt: time.Now()}, nil
}

func (m *mockCommerceUC) RenewSubscription(ctx context.Context, order *model.OrderRequest) (*model.TransactionResult, error) {
	if m.RenewFunc != nil {
		return m.RenewFunc(ctx, order)
	}
	return &model.TransactionResult{CompletedAt: time.Now()}, nil
}

// ---- mock repositories ----

type mockOfferRepo struct {
	offers  []*model.PartnerOffer
	listErr error
}

var _ repository.OfferRepository = (*mockOfferRepo)(nil)

func (m *mockOfferRepo) Save(context.Context, repository.Tx, *model.PartnerOffer) error { return nil }

func (m *mockOfferRepo) FindByID(context.Context, repository.Tx, string) (*model.PartnerOffer, error) {
	return nil, domain.ErrNotFound
}

func (m *mockOfferRepo) ListAll(context.Context, repository.Tx) ([]*model.PartnerOffer, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.offers, nil
}

type mockSubscriptionRepo struct {
	subs []*model.CustomerSubscription
}

var _ repository.SubscriptionRepository = (*mockSubscriptionRepo)(nil)

func (m *mockSubscriptionRepo) Upsert(context.Context, repository.Tx, *model.CustomerSubscription) error {
	return nil
}

func (m *mockSubscriptionRepo) Delete(context.Context, repository.Tx, string, string) error {
	return nil
}

func (m *mockSubscriptionRepo) FindByCustomerAndID(context.Context, repository.Tx, string, string) (*model.CustomerSubscription, error) {
	return nil, domain.ErrNotFound
}

func (m *mockSubscriptionRepo) ListByCustomer(_ context.Context, _ repository.Tx, customerID string) ([]*model.CustomerSubscription, error) {
	var out []*model.CustomerSubscription
	for _, s := range m.subs {
		if s.CustomerID == customerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSubscriptionRepo) ListExpiringBefore(context.Context, repository.Tx, time.Time) ([]*model.CustomerSubscription, error) {
	return nil, nil
}

// ---- mock locker ----

type mockLocker struct {
	mu    sync.Mutex
	held  map[string]string
	busy  bool
	locks []string
}

func newMockLocker() *mockLocker {
	return &mockLocker{held: make(map[string]string)}
}

func (m *mockLocker) TryLock(_ context.Context, key string, _ time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return "", domain.ErrDuplicateOrder
	}
	if _, taken := m.held[key]; taken {
		return "", domain.ErrDuplicateOrder
	}
	m.held[key] = "token"
	m.locks = append(m.locks, key)
	return "token", nil
}

func (m *mockLocker) Unlock(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, key)
	return nil
}
