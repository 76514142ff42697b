package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"cloud-commerce-portal/internal/domain"
	"cloud-commerce-portal/internal/domain/model"
	"cloud-commerce-portal/internal/infra/logging"
	"cloud-commerce-portal/internal/infra/metrics"
)

// submitLockTTL bounds how long a customer's order slot stays locked if the
// process dies mid-request.
const submitLockTTL = 30 * time.Second

type orderLineItemRequest struct {
	OfferID        string `json:"offer_id"`
	SubscriptionID string `json:"subscription_id"`
	Quantity       int    `json:"quantity"`
}

type orderRequest struct {
	LineItems []orderLineItemRequest `json:"line_items"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) handleOrder(operation model.CommerceOperationType, run func(context.Context, *model.OrderRequest) (*model.TransactionResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		customer := customerID(ctx)

		var req orderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
			return
		}

		// One in-flight order per customer.
		lockKey := "order-submit:" + customer
		token, err := s.locker.TryLock(ctx, lockKey, submitLockTTL)
		if err != nil {
			s.writeDomainError(ctx, w, operation, err)
			return
		}
		defer func() { _ = s.locker.Unlock(ctx, lockKey, token) }()

		order := &model.OrderRequest{CustomerID: customer}
		for _, li := range req.LineItems {
			order.LineItems = append(order.LineItems, model.OrderLineItem{
				OfferID:        li.OfferID,
				SubscriptionID: li.SubscriptionID,
				Quantity:       li.Quantity,
			})
		}

		result, err := run(ctx, order)
		if err != nil {
			s.writeDomainError(ctx, w, operation, err)
			return
		}

		metrics.IncOrder(string(operation), "success")
		for _, li := range result.LineItems {
			charged, _ := li.AmountCharged.Float64()
			metrics.AddRevenue(s.currency, charged)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(result)
	}
}

type sessionRequest struct {
	CustomerID string `json:"customer_id"`
}

// handleDevSession issues a session cookie for any customer id. Only routed
// in dev mode.
func (s *Server) handleDevSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CustomerID == "" {
		writeError(w, http.StatusBadRequest, "invalid_body", "A customer_id is required")
		return
	}

	token, err := s.auth.Mint(w, req.CustomerID)
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("failed to mint session")
		writeError(w, http.StatusInternalServerError, "internal", "Failed to create session")
		return
	}

	response := struct {
		Token string `json:"token"`
	}{Token: token}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(response)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, _ *http.Request) {
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListOffers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	offers, err := s.offers.ListAll(ctx, nil)
	if err != nil {
		logging.With(ctx, s.log).Error().Err(err).Msg("failed to list offers")
		writeError(w, http.StatusInternalServerError, "internal", "Failed to list offers")
		return
	}

	response := struct {
		Data []*model.PartnerOffer `json:"data"`
	}{Data: offers}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subs, err := s.subs.ListByCustomer(ctx, nil, customerID(ctx))
	if err != nil {
		logging.With(ctx, s.log).Error().Err(err).Msg("failed to list subscriptions")
		writeError(w, http.StatusInternalServerError, "internal", "Failed to list subscriptions")
		return
	}

	response := struct {
		Data []*model.CustomerSubscription `json:"data"`
	}{Data: subs}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

// writeDomainError translates domain failures into HTTP responses and records
// the related metrics.
func (s *Server) writeDomainError(ctx context.Context, w http.ResponseWriter, operation model.CommerceOperationType, err error) {
	metrics.IncOrder(string(operation), "failed")

	if errors.Is(err, domain.ErrDuplicateOrder) {
		writeError(w, http.StatusConflict, "duplicate_order", "An identical order is already being processed")
		return
	}
	if domain.RollbackIncomplete(err) {
		metrics.IncRollbackFailure()
		logging.With(ctx, s.log).Error().Err(err).Msg("order failed with incomplete rollback")
		writeError(w, http.StatusInternalServerError, "rollback_incomplete",
			"The order failed and could not be fully reverted; it has been flagged for manual review")
		return
	}

	switch domain.KindOf(err) {
	case domain.KindValidation:
		writeError(w, http.StatusBadRequest, "invalid_order", err.Error())
	case domain.KindPayment:
		code := "payment_declined"
		var derr *domain.Error
		if errors.As(err, &derr) && derr.Code != "" {
			code = derr.Code
		}
		writeError(w, http.StatusPaymentRequired, code, "Payment was declined")
	case domain.KindUpstream:
		logging.With(ctx, s.log).Error().Err(err).Msg("partner call failed")
		writeError(w, http.StatusBadGateway, "partner_unavailable", "The subscription provider rejected the order")
	default:
		logging.With(ctx, s.log).Error().Err(err).Msg("order processing failed")
		writeError(w, http.StatusInternalServerError, "internal", "Failed to process order")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	var resp errorResponse
	resp.Error.Code = code
	resp.Error.Message = message

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
