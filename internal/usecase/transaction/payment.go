package transaction

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"cloud-commerce-portal/internal/domain"
	"cloud-commerce-portal/internal/domain/model"
	"cloud-commerce-portal/internal/domain/ports/adapter"
)

// AuthorizePayment places a hold for the order total. It always runs before
// any upstream-state-changing step so a declined card costs nothing.
type AuthorizePayment struct {
	gateway     adapter.PaymentGateway
	amount      decimal.Decimal
	currency    string
	description string

	// Result is set on successful Execute; CapturePayment reads it lazily.
	Result *model.PaymentAuthorization
}

func NewAuthorizePayment(gateway adapter.PaymentGateway, amount decimal.Decimal, currency, description string) *AuthorizePayment {
	return &AuthorizePayment{gateway: gateway, amount: amount, currency: currency, description: description}
}

func (t *AuthorizePayment) Name() string { return "authorize-payment" }

func (t *AuthorizePayment) Execute(ctx context.Context) error {
	auth, err := t.gateway.Authorize(ctx, t.amount, t.currency, t.description)
	if err != nil {
		return asPaymentError(err)
	}
	t.Result = auth
	return nil
}

func (t *AuthorizePayment) Rollback(ctx context.Context) error {
	if t.Result == nil {
		return nil
	}
	return t.gateway.VoidAuthorization(ctx, t.Result.AuthorizationID)
}

// CapturePayment settles the finally computed amount against a previously
// placed authorization. It always runs last, after every upstream and
// persistence step has succeeded.
type CapturePayment struct {
	gateway       adapter.PaymentGateway
	authorization func() *model.PaymentAuthorization
	amount        decimal.Decimal

	Result *model.CaptureReceipt
}

func NewCapturePayment(gateway adapter.PaymentGateway, authorization func() *model.PaymentAuthorization, amount decimal.Decimal) *CapturePayment {
	return &CapturePayment{gateway: gateway, authorization: authorization, amount: amount}
}

func (t *CapturePayment) Name() string { return "capture-payment" }

func (t *CapturePayment) Execute(ctx context.Context) error {
	auth := t.authorization()
	if auth == nil {
		return domain.Payment("", errors.New("no payment authorization available to capture"))
	}
	receipt, err := t.gateway.Capture(ctx, auth.AuthorizationID, t.amount)
	if err != nil {
		return asPaymentError(err)
	}
	t.Result = receipt
	return nil
}

func (t *CapturePayment) Rollback(ctx context.Context) error {
	if t.Result == nil {
		return nil
	}
	return t.gateway.Refund(ctx, t.Result.CaptureID, t.Result.Amount)
}

// asPaymentError keeps gateway-provided classifications and tags anything
// unclassified as a generic payment failure.
func asPaymentError(err error) error {
	if domain.KindOf(err) != domain.KindUnknown {
		return err
	}
	return domain.Payment("", err)
}
