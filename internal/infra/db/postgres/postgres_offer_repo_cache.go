package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud-commerce-portal/internal/domain/model"
	"cloud-commerce-portal/internal/domain/ports/repository"
	"cloud-commerce-portal/internal/infra/metrics"
	red "cloud-commerce-portal/internal/infra/redis"
)

var _ repository.OfferRepository = (*offerRepoCacheDecorator)(nil)

// offerRepoCacheDecorator caches the offer catalog in Redis. The catalog is
// read on every order (association + normalization) but changes rarely, so
// writes simply invalidate.
type offerRepoCacheDecorator struct {
	inner repository.OfferRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewOfferRepoCacheDecorator(inner repository.OfferRepository, cache red.RedisClient, ttl time.Duration) repository.OfferRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &offerRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func (d *offerRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PartnerOffer, error) {
	key := fmt.Sprintf("offer:%s", id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var offer model.PartnerOffer
		if json.Unmarshal([]byte(val), &offer) == nil && !offer.IsZero() {
			metrics.IncCacheRequest("offer", "hit")
			return &offer, nil
		}
	}
	result := "miss"
	if err != nil && !errors.Is(err, red.Nil) {
		result = "error"
	}
	metrics.IncCacheRequest("offer", result)
	offer, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(offer); err == nil {
		_ = d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return offer, nil
}

func (d *offerRepoCacheDecorator) ListAll(ctx context.Context, tx repository.Tx) ([]*model.PartnerOffer, error) {
	const key = "offers:all"
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var offers []*model.PartnerOffer
		if json.Unmarshal([]byte(val), &offers) == nil {
			metrics.IncCacheRequest("offer_list", "hit")
			return offers, nil
		}
	}
	result := "miss"
	if err != nil && !errors.Is(err, red.Nil) {
		result = "error"
	}
	metrics.IncCacheRequest("offer_list", result)
	offers, err := d.inner.ListAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(offers); err == nil {
		_ = d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return offers, nil
}

func (d *offerRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, o *model.PartnerOffer) error {
	_ = d.cache.Del(ctx, fmt.Sprintf("offer:%s", o.ID), "offers:all")
	return d.inner.Save(ctx, tx, o)
}
