package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"cloud-commerce-portal/internal/domain"
	"cloud-commerce-portal/internal/domain/model"
	"cloud-commerce-portal/internal/domain/ports/repository"
)

// Ensure offerRepo implements repository.OfferRepository
var _ repository.OfferRepository = (*offerRepo)(nil)

type offerRepo struct {
	pool *pgxpool.Pool
}

func NewOfferRepo(pool *pgxpool.Pool) *offerRepo {
	return &offerRepo{pool: pool}
}

func (r *offerRepo) Save(ctx context.Context, tx repository.Tx, o *model.PartnerOffer) error {
	const q = `
INSERT INTO partner_offers (id, upstream_offer_id, title, price, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET
  upstream_offer_id=$2, title=$3, price=$4;`

	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err := ex.Exec(ctx, q, o.ID, o.UpstreamOfferID, o.Title, o.Price, o.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *offerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PartnerOffer, error) {
	const q = `
SELECT id, upstream_offer_id, title, price, created_at
  FROM partner_offers
 WHERE id=$1;`

	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var o model.PartnerOffer
	err = ex.QueryRow(ctx, q, id).Scan(&o.ID, &o.UpstreamOfferID, &o.Title, &o.Price, &o.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *offerRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.PartnerOffer, error) {
	const q = `
SELECT id, upstream_offer_id, title, price, created_at
  FROM partner_offers
 ORDER BY title;`

	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.PartnerOffer
	for rows.Next() {
		var o model.PartnerOffer
		if err := rows.Scan(&o.ID, &o.UpstreamOfferID, &o.Title, &o.Price, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}
