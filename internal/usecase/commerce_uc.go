package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"cloud-commerce-portal/internal/domain"
	"cloud-commerce-portal/internal/domain/model"
	"cloud-commerce-portal/internal/domain/ports/adapter"
	"cloud-commerce-portal/internal/domain/ports/repository"
	"cloud-commerce-portal/internal/infra/logging"
	"cloud-commerce-portal/internal/usecase/transaction"
)

// Compile-time check
var _ CommerceUseCase = (*commerceUC)(nil)

// CommerceUseCase implements the portal's commerce operations. Every
// operation follows the same template: normalize the order, resolve the
// referenced offers/subscriptions, build the ordered transaction list with
// payment authorization first and payment capture last, run it as one
// aggregate transaction and shape the result.
type CommerceUseCase interface {
	Purchase(ctx context.Context, order *model.OrderRequest) (*model.TransactionResult, error)
	PurchaseAdditionalSeats(ctx context.Context, order *model.OrderRequest) (*model.TransactionResult, error)
	RenewSubscription(ctx context.Context, order *model.OrderRequest) (*model.TransactionResult, error)
}

type commerceUC struct {
	offers    repository.OfferRepository
	subs      repository.SubscriptionRepository
	purchases repository.PurchaseRepository
	tm        repository.TransactionManager
	partner   adapter.PartnerClient
	gateway   adapter.PaymentGateway

	normalizer *OrderNormalizer
	currency   string
	digits     int32
	log        *zerolog.Logger
	now        func() time.Time
	newID      func() string
}

func NewCommerceUseCase(
	offers repository.OfferRepository,
	subs repository.SubscriptionRepository,
	purchases repository.PurchaseRepository,
	tm repository.TransactionManager,
	partner adapter.PartnerClient,
	gateway adapter.PaymentGateway,
	currency string,
	logger *zerolog.Logger,
) *commerceUC {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &commerceUC{
		offers:     offers,
		subs:       subs,
		purchases:  purchases,
		tm:         tm,
		partner:    partner,
		gateway:    gateway,
		normalizer: NewOrderNormalizer(offers, subs),
		currency:   currency,
		digits:     currencyDecimalDigits(currency),
		log:        logger,
		now:        time.Now,
		newID:      func() string { return ulid.Make().String() },
	}
}

// Purchase buys one or more partner offers as a single order: one payment
// authorization and capture for the whole order, one upstream order across
// all line items, one persistence step for the resulting subscriptions.
func (uc *commerceUC) Purchase(ctx context.Context, order *model.OrderRequest) (*model.TransactionResult, error) {
	defer logging.TraceDuration(uc.log, "CommerceUC.Purchase")()

	order, err := uc.normalizer.NormalizePurchase(ctx, order)
	if err != nil {
		return nil, err
	}

	items := make([]model.PurchaseLineItem, 0, len(order.LineItems))
	for _, li := range order.LineItems {
		items = append(items, model.PurchaseLineItem{OfferID: li.OfferID, Quantity: li.Quantity})
	}
	withOffers, err := uc.associateWithPartnerOffers(ctx, items)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, it := range withOffers {
		total = total.Add(it.Offer.Price.Mul(decimal.NewFromInt(int64(it.LineItem.Quantity))))
	}
	total = total.Round(uc.digits)

	authorize := transaction.NewAuthorizePayment(uc.gateway, total, uc.currency,
		fmt.Sprintf("new purchase for customer %s", order.CustomerID))
	placeOrder := transaction.NewPlaceOrder(uc.partner, order.CustomerID, buildUpstreamOrder(order.CustomerID, withOffers))
	persist := transaction.NewPersistNewlyPurchasedSubscriptions(
		order.CustomerID, uc.subs, uc.purchases, uc.tm,
		func() (*model.UpstreamOrder, []model.PurchaseLineItemWithOffer) {
			return placeOrder.Result, withOffers
		},
		uc.digits)
	capture := transaction.NewCapturePayment(uc.gateway,
		func() *model.PaymentAuthorization { return authorize.Result }, total)

	agg := transaction.NewSequentialAggregate(uc.log, authorize, placeOrder, persist, capture)
	if err := agg.Execute(ctx); err != nil {
		return nil, err
	}

	return &model.TransactionResult{LineItems: persist.Result, CompletedAt: uc.now().UTC()}, nil
}

// PurchaseAdditionalSeats buys extra seats on one existing subscription,
// charging the prorated seat rate for the remainder of the current term.
func (uc *commerceUC) PurchaseAdditionalSeats(ctx context.Context, order *model.OrderRequest) (*model.TransactionResult, error) {
	defer logging.TraceDuration(uc.log, "CommerceUC.PurchaseAdditionalSeats")()

	order, err := uc.normalizer.NormalizeAdditionalSeats(ctx, order)
	if err != nil {
		return nil, err
	}
	li := order.LineItems[0]
	now := uc.now().UTC()
	total := li.SeatPrice.Mul(decimal.NewFromInt(int64(li.Quantity))).Round(uc.digits)

	ledgerRow, err := model.NewCustomerPurchase(model.OperationAdditionalSeats, uc.newID(),
		order.CustomerID, li.SubscriptionID, li.Quantity, li.SeatPrice, now)
	if err != nil {
		return nil, err
	}

	authorize := transaction.NewAuthorizePayment(uc.gateway, total, uc.currency,
		fmt.Sprintf("%d additional seats on subscription %s", li.Quantity, li.SubscriptionID))
	extraSeats := transaction.NewPurchaseExtraSeats(uc.partner, order.CustomerID, li.SubscriptionID, li.Quantity)
	record := transaction.NewRecordPurchase(uc.purchases, ledgerRow)
	capture := transaction.NewCapturePayment(uc.gateway,
		func() *model.PaymentAuthorization { return authorize.Result }, total)

	agg := transaction.NewSequentialAggregate(uc.log, authorize, extraSeats, record, capture)
	if err := agg.Execute(ctx); err != nil {
		return nil, err
	}

	return &model.TransactionResult{
		LineItems: []model.TransactionResultLineItem{{
			SubscriptionID: li.SubscriptionID,
			OfferID:        li.OfferID,
			Quantity:       li.Quantity,
			SeatPrice:      li.SeatPrice,
			AmountCharged:  total,
		}},
		CompletedAt: now,
	}, nil
}

// RenewSubscription extends an existing subscription by one year, charging
// the offer's yearly rate for the subscription's authoritative current seat
// count as reported by the upstream API.
func (uc *commerceUC) RenewSubscription(ctx context.Context, order *model.OrderRequest) (*model.TransactionResult, error) {
	defer logging.TraceDuration(uc.log, "CommerceUC.RenewSubscription")()

	order, err := uc.normalizer.NormalizeRenewal(ctx, order)
	if err != nil {
		return nil, err
	}
	li := order.LineItems[0]

	upstreamSub, err := uc.partner.GetSubscription(ctx, order.CustomerID, li.SubscriptionID)
	if err != nil {
		if domain.KindOf(err) != domain.KindUnknown {
			return nil, err
		}
		return nil, domain.Upstream(err)
	}

	now := uc.now().UTC()
	quantity := upstreamSub.Quantity
	total := li.SeatPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(uc.digits)

	ledgerRow, err := model.NewCustomerPurchase(model.OperationRenewal, uc.newID(),
		order.CustomerID, li.SubscriptionID, quantity, li.SeatPrice, now)
	if err != nil {
		return nil, err
	}
	renewed, err := model.NewCustomerSubscription(order.CustomerID, li.SubscriptionID,
		li.OfferID, li.SubscriptionExpiry.AddDate(1, 0, 0))
	if err != nil {
		return nil, err
	}

	authorize := transaction.NewAuthorizePayment(uc.gateway, total, uc.currency,
		fmt.Sprintf("renewal of subscription %s", li.SubscriptionID))
	renew := transaction.NewRenewSubscription(uc.partner, order.CustomerID, li.SubscriptionID)
	record := transaction.NewRecordPurchase(uc.purchases, ledgerRow)
	update := transaction.NewUpdatePersistedSubscription(uc.subs, renewed)
	capture := transaction.NewCapturePayment(uc.gateway,
		func() *model.PaymentAuthorization { return authorize.Result }, total)

	agg := transaction.NewSequentialAggregate(uc.log, authorize, renew, record, update, capture)
	if err := agg.Execute(ctx); err != nil {
		return nil, err
	}

	return &model.TransactionResult{
		LineItems: []model.TransactionResultLineItem{{
			SubscriptionID: li.SubscriptionID,
			OfferID:        li.OfferID,
			Quantity:       quantity,
			SeatPrice:      li.SeatPrice,
			AmountCharged:  total,
		}},
		CompletedAt: now,
	}, nil
}

// associateWithPartnerOffers binds every purchase line item to the catalog
// offer it requests. An unresolvable line item fails the whole operation
// here, before any payment step is built or run.
func (uc *commerceUC) associateWithPartnerOffers(ctx context.Context, items []model.PurchaseLineItem) ([]model.PurchaseLineItemWithOffer, error) {
	all, err := uc.offers.ListAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.PartnerOffer, len(all))
	for _, o := range all {
		byID[o.ID] = o
	}

	out := make([]model.PurchaseLineItemWithOffer, 0, len(items))
	for _, it := range items {
		offer, ok := byID[it.OfferID]
		if !ok {
			return nil, domain.Validation("line item references unknown offer %s", it.OfferID)
		}
		out = append(out, model.PurchaseLineItemWithOffer{LineItem: it, Offer: offer})
	}
	return out, nil
}

// buildUpstreamOrder bundles resolved line items into the order shape the
// partner API accepts, numbering line items sequentially from zero.
func buildUpstreamOrder(customerID string, items []model.PurchaseLineItemWithOffer) *model.UpstreamOrder {
	order := &model.UpstreamOrder{ReferenceCustomerID: customerID}
	for i, it := range items {
		order.LineItems = append(order.LineItems, model.UpstreamOrderLineItem{
			LineItemNumber: i,
			OfferID:        it.Offer.UpstreamOfferID,
			Quantity:       it.LineItem.Quantity,
		})
	}
	return order
}

// currencyDecimalDigits returns the minor-unit precision used when rounding
// totals. Zero-decimal currencies charge whole units.
func currencyDecimalDigits(currency string) int32 {
	switch currency {
	case "JPY", "KRW", "IRR", "VND":
		return 0
	default:
		return 2
	}
}
