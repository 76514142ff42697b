package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"cloud-commerce-portal/internal/domain/ports/repository"
	"cloud-commerce-portal/internal/infra/metrics"
)

// ExpiryWorker periodically scans for subscriptions approaching their expiry
// date. It only reports; renewal is always an explicit customer action.
type ExpiryWorker struct {
	interval time.Duration
	window   time.Duration
	subs     repository.SubscriptionRepository
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, windowDays int, subs repository.SubscriptionRepository, logger *zerolog.Logger) *ExpiryWorker {
	exprLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval: interval,
		window:   time.Duration(windowDays) * 24 * time.Hour,
		subs:     subs,
		log:      &exprLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *ExpiryWorker) scan(ctx context.Context) {
	cutoff := time.Now().Add(w.window)
	expiring, err := w.subs.ListExpiringBefore(ctx, nil, cutoff)
	if err != nil {
		w.log.Error().Err(err).Msg("expiry scan failed")
		return
	}

	metrics.SetExpiringSubscriptions(len(expiring))
	for _, sub := range expiring {
		w.log.Info().
			Str("customer_id", sub.CustomerID).
			Str("subscription_id", sub.SubscriptionID).
			Time("expiry_date", sub.ExpiryDate).
			Msg("subscription nearing expiry")
	}
}
