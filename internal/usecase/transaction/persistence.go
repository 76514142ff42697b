package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"cloud-commerce-portal/internal/domain"
	"cloud-commerce-portal/internal/domain/model"
	"cloud-commerce-portal/internal/domain/ports/repository"
)

// RecordPurchase appends one row to the purchase ledger.
type RecordPurchase struct {
	purchases repository.PurchaseRepository
	purchase  *model.CustomerPurchase
	written   bool
}

func NewRecordPurchase(purchases repository.PurchaseRepository, purchase *model.CustomerPurchase) *RecordPurchase {
	return &RecordPurchase{purchases: purchases, purchase: purchase}
}

func (t *RecordPurchase) Name() string { return "record-purchase" }

func (t *RecordPurchase) Execute(ctx context.Context) error {
	if err := t.purchases.Append(ctx, nil, t.purchase); err != nil {
		return asPersistenceError(err)
	}
	t.written = true
	return nil
}

func (t *RecordPurchase) Rollback(ctx context.Context) error {
	if !t.written {
		return nil
	}
	return t.purchases.Delete(ctx, nil, t.purchase.ID)
}

// UpdatePersistedSubscription upserts a subscription record, remembering the
// prior row so rollback can restore it (or delete the record if there was
// none).
type UpdatePersistedSubscription struct {
	subs    repository.SubscriptionRepository
	updated *model.CustomerSubscription
	prior   *model.CustomerSubscription
	written bool
}

func NewUpdatePersistedSubscription(subs repository.SubscriptionRepository, updated *model.CustomerSubscription) *UpdatePersistedSubscription {
	return &UpdatePersistedSubscription{subs: subs, updated: updated}
}

func (t *UpdatePersistedSubscription) Name() string { return "update-persisted-subscription" }

func (t *UpdatePersistedSubscription) Execute(ctx context.Context) error {
	prior, err := t.subs.FindByCustomerAndID(ctx, nil, t.updated.CustomerID, t.updated.SubscriptionID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return asPersistenceError(err)
	}
	t.prior = prior
	if err := t.subs.Upsert(ctx, nil, t.updated); err != nil {
		return asPersistenceError(err)
	}
	t.written = true
	return nil
}

func (t *UpdatePersistedSubscription) Rollback(ctx context.Context) error {
	if !t.written {
		return nil
	}
	if t.prior != nil {
		return t.subs.Upsert(ctx, nil, t.prior)
	}
	return t.subs.Delete(ctx, nil, t.updated.CustomerID, t.updated.SubscriptionID)
}

// PersistNewlyPurchasedSubscriptions writes the subscription records and
// ledger rows for a freshly placed upstream order as one step. The placed
// order is read through source at execution time since the place-order step
// has not run yet when this step is constructed.
type PersistNewlyPurchasedSubscriptions struct {
	customerID     string
	subs           repository.SubscriptionRepository
	purchases      repository.PurchaseRepository
	tm             repository.TransactionManager
	source         func() (*model.UpstreamOrder, []model.PurchaseLineItemWithOffer)
	currencyDigits int32

	now   func() time.Time
	newID func() string

	// Result holds one line per purchased subscription, consumed by the
	// orchestrator to shape the caller-visible outcome.
	Result []model.TransactionResultLineItem

	writtenSubs []string
	writtenRows []string
}

// NewPersistNewlyPurchasedSubscriptions builds the persistence step. tm may
// be nil, in which case the writes run outside a database transaction
// (in-memory repositories).
func NewPersistNewlyPurchasedSubscriptions(
	customerID string,
	subs repository.SubscriptionRepository,
	purchases repository.PurchaseRepository,
	tm repository.TransactionManager,
	source func() (*model.UpstreamOrder, []model.PurchaseLineItemWithOffer),
	currencyDigits int32,
) *PersistNewlyPurchasedSubscriptions {
	return &PersistNewlyPurchasedSubscriptions{
		customerID:     customerID,
		subs:           subs,
		purchases:      purchases,
		tm:             tm,
		source:         source,
		currencyDigits: currencyDigits,
		now:            time.Now,
		newID:          func() string { return ulid.Make().String() },
	}
}

func (t *PersistNewlyPurchasedSubscriptions) Name() string {
	return "persist-new-subscriptions"
}

func (t *PersistNewlyPurchasedSubscriptions) Execute(ctx context.Context) error {
	order, items := t.source()
	if order == nil {
		return domain.Persistence(errors.New("no placed order available to persist"))
	}
	if len(order.LineItems) != len(items) {
		return domain.Persistence(fmt.Errorf("placed order has %d line items, expected %d", len(order.LineItems), len(items)))
	}

	now := t.now().UTC()
	expiry := now.AddDate(1, 0, 0)

	var (
		subIDs []string
		rowIDs []string
		lines  []model.TransactionResultLineItem
	)
	write := func(ctx context.Context, tx repository.Tx) error {
		for i, li := range order.LineItems {
			offer := items[i].Offer
			sub, err := model.NewCustomerSubscription(t.customerID, li.SubscriptionID, offer.ID, expiry)
			if err != nil {
				return err
			}
			if err := t.subs.Upsert(ctx, tx, sub); err != nil {
				return err
			}
			subIDs = append(subIDs, li.SubscriptionID)

			row, err := model.NewCustomerPurchase(model.OperationNewPurchase, t.newID(), t.customerID, li.SubscriptionID, li.Quantity, offer.Price, now)
			if err != nil {
				return err
			}
			if err := t.purchases.Append(ctx, tx, row); err != nil {
				return err
			}
			rowIDs = append(rowIDs, row.ID)

			qty := decimal.NewFromInt(int64(li.Quantity))
			lines = append(lines, model.TransactionResultLineItem{
				SubscriptionID: li.SubscriptionID,
				OfferID:        offer.ID,
				Quantity:       li.Quantity,
				SeatPrice:      offer.Price,
				AmountCharged:  offer.Price.Mul(qty).Round(t.currencyDigits),
			})
		}
		return nil
	}

	var err error
	if t.tm != nil {
		err = t.tm.WithTx(ctx, write)
	} else {
		err = write(ctx, nil)
	}
	if err != nil {
		// A failed step is never rolled back, only completed ones are. With
		// a tx the database already undid the writes; without one, partial
		// writes are left for reconciliation.
		return asPersistenceError(err)
	}

	t.writtenSubs, t.writtenRows = subIDs, rowIDs
	t.Result = lines
	return nil
}

func (t *PersistNewlyPurchasedSubscriptions) Rollback(ctx context.Context) error {
	var errs []error
	for i := len(t.writtenRows) - 1; i >= 0; i-- {
		if err := t.purchases.Delete(ctx, nil, t.writtenRows[i]); err != nil {
			errs = append(errs, err)
		}
	}
	for i := len(t.writtenSubs) - 1; i >= 0; i-- {
		if err := t.subs.Delete(ctx, nil, t.customerID, t.writtenSubs[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func asPersistenceError(err error) error {
	if domain.KindOf(err) != domain.KindUnknown {
		return err
	}
	return domain.Persistence(err)
}
