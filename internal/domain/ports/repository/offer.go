package repository

import (
	"context"

	"cloud-commerce-portal/internal/domain/model"
)

// OfferRepository is the port for the partner offer catalog.
type OfferRepository interface {
	Save(ctx context.Context, tx Tx, offer *model.PartnerOffer) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.PartnerOffer, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.PartnerOffer, error)
}
