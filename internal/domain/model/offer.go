package model

import (
	"time"

	"github.com/shopspring/decimal"

	"cloud-commerce-portal/internal/domain"
)

// PartnerOffer is a purchasable catalog entry the portal sells. Price is the
// yearly rate per seat. UpstreamOfferID is the identifier the partner API
// understands when the offer is ordered.
type PartnerOffer struct {
	ID              string
	UpstreamOfferID string
	Title           string
	Price           decimal.Decimal
	CreatedAt       time.Time
}

func (o *PartnerOffer) IsZero() bool { return o == nil || o.ID == "" }

// NewPartnerOffer validates and constructs an offer.
func NewPartnerOffer(id, upstreamOfferID, title string, price decimal.Decimal) (*PartnerOffer, error) {
	if id == "" || upstreamOfferID == "" || title == "" || price.IsNegative() {
		return nil, domain.ErrInvalidArgument
	}
	return &PartnerOffer{
		ID:              id,
		UpstreamOfferID: upstreamOfferID,
		Title:           title,
		Price:           price,
		CreatedAt:       time.Now().UTC(),
	}, nil
}
