package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentAuthorization is the hold placed by the gateway before any upstream
// state changes. Its lifetime is exactly one aggregate transaction run: it is
// either captured by the final step or voided during rollback.
type PaymentAuthorization struct {
	AuthorizationID string
	Amount          decimal.Decimal
	Currency        string
	CreatedAt       time.Time
}

// CaptureReceipt is the gateway's proof that funds were captured against a
// previously placed authorization.
type CaptureReceipt struct {
	CaptureID       string
	AuthorizationID string
	Amount          decimal.Decimal
	Currency        string
	CapturedAt      time.Time
}
