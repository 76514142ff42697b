package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"cloud-commerce-portal/internal/domain/model"
	"cloud-commerce-portal/internal/domain/ports/repository"
	"cloud-commerce-portal/internal/infra/logging"
	"cloud-commerce-portal/internal/infra/redis"
	"cloud-commerce-portal/internal/usecase"
)

type ctxKeyCustomer struct{}

// Server exposes the commerce API. Order submissions are serialized per
// customer through the Redis locker so a double-click cannot place two orders.
type Server struct {
	commerce usecase.CommerceUseCase
	offers   repository.OfferRepository
	subs     repository.SubscriptionRepository
	locker   redis.Locker
	auth     *AuthManager
	currency string
	dev      bool
	log      *zerolog.Logger
}

func NewServer(
	commerce usecase.CommerceUseCase,
	offers repository.OfferRepository,
	subs repository.SubscriptionRepository,
	locker redis.Locker,
	auth *AuthManager,
	currency string,
	dev bool,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		commerce: commerce,
		offers:   offers,
		subs:     subs,
		locker:   locker,
		auth:     auth,
		currency: currency,
		dev:      dev,
		log:      logger,
	}
}

// Router builds the chi routing tree.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.traceMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Sessions are normally minted by the portal front-end's identity
	// provider; the dev login stands in for it locally.
	if s.dev {
		r.Post("/session", s.handleDevSession)
	}
	r.Delete("/session", s.handleDeleteSession)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Get("/offers", s.handleListOffers)
		r.Get("/subscriptions", s.handleListSubscriptions)

		r.Post("/orders", s.handleOrder(model.OperationNewPurchase, s.commerce.Purchase))
		r.Post("/orders/seats", s.handleOrder(model.OperationAdditionalSeats, s.commerce.PurchaseAdditionalSeats))
		r.Post("/orders/renew", s.handleOrder(model.OperationRenewal, s.commerce.RenewSubscription))
	})

	return r
}

// traceMiddleware threads a trace id and request log through the context.
func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Request-Id")
		if traceID == "" {
			traceID = uuid.NewString()
		}
		ctx := logging.WithTraceID(r.Context(), traceID)
		w.Header().Set("X-Request-Id", traceID)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logging.With(ctx, s.log).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}

// sessionMiddleware authenticates the customer session and stores the
// customer id in the request context.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyCustomer{}, claims.CustomerID)
		ctx = logging.WithCustomerID(ctx, claims.CustomerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func customerID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyCustomer{}).(string)
	return id
}
