package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud-commerce-portal/internal/config"
	"cloud-commerce-portal/internal/domain/ports/adapter"
	pg "cloud-commerce-portal/internal/infra/db/postgres"
	"cloud-commerce-portal/internal/infra/logging"
	"cloud-commerce-portal/internal/infra/metrics"
	"cloud-commerce-portal/internal/infra/partner"
	"cloud-commerce-portal/internal/infra/payment"
	red "cloud-commerce-portal/internal/infra/redis"
	"cloud-commerce-portal/internal/infra/sched"
	"cloud-commerce-portal/internal/infra/web"
	"cloud-commerce-portal/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	offerRepo := pg.NewOfferRepoCacheDecorator(pg.NewOfferRepo(pool), redisClient, cfg.Redis.TTL)
	subRepo := pg.NewSubscriptionRepo(pool)
	purchaseRepo := pg.NewPurchaseRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- Adapters ----
	var gateway adapter.PaymentGateway
	if cfg.Runtime.Dev {
		gateway = payment.NewNoopGateway()
		logger.Warn().Msg("payment gateway: noop")
	} else {
		gateway = payment.NewRestGateway(cfg.Payment.BaseURL, cfg.Payment.MerchantID, cfg.Payment.APIKey)
	}

	var partnerClient adapter.PartnerClient
	if cfg.Runtime.Dev {
		partnerClient = partner.NewFakeClient()
		logger.Warn().Msg("partner client: in-memory fake")
	} else {
		partnerClient = partner.NewRestClient(cfg.Partner.BaseURL, cfg.Partner.AppID, cfg.Partner.Secret)
	}

	// ---- Use cases ----
	commerceUC := usecase.NewCommerceUseCase(
		offerRepo, subRepo, purchaseRepo, tm,
		partnerClient, gateway,
		cfg.Payment.Currency, logger,
	)

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.Web.SessionSecret, cfg.Web.SecureCookie, cfg.Web.CookieDomain, cfg.Web.SessionTTL)
	srv := web.NewServer(commerceUC, offerRepo, subRepo, locker, auth, cfg.Payment.Currency, cfg.Runtime.Dev, logger)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Web.Port),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Expiry worker ----
	worker := sched.NewExpiryWorker(cfg.Scheduler.ExpiryScanInterval, cfg.Scheduler.ExpiryWindowDays, subRepo, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
