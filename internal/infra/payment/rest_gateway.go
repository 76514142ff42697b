package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"cloud-commerce-portal/internal/domain"
	"cloud-commerce-portal/internal/domain/model"
)

// RestGateway implements adapter.PaymentGateway against the processor's
// direct HTTP API. Amounts travel as decimal strings to avoid float drift.
type RestGateway struct {
	baseURL    string
	merchantID string
	apiKey     string
	client     *http.Client
}

// NewRestGateway creates a gateway client for the given processor endpoint.
func NewRestGateway(baseURL, merchantID, apiKey string) *RestGateway {
	return &RestGateway{
		baseURL:    baseURL,
		merchantID: merchantID,
		apiKey:     apiKey,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *RestGateway) Name() string { return "rest" }

type gatewayResponse struct {
	Data struct {
		AuthorizationID string `json:"authorization_id"`
		CaptureID       string `json:"capture_id"`
		RefundID        string `json:"refund_id"`
		Amount          string `json:"amount"`
		Currency        string `json:"currency"`
	} `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Authorize places a hold for amount on the customer's stored payment method.
func (g *RestGateway) Authorize(ctx context.Context, amount decimal.Decimal, currency, description string) (*model.PaymentAuthorization, error) {
	resp, err := g.post(ctx, "/v1/authorizations", map[string]interface{}{
		"merchant_id": g.merchantID,
		"amount":      amount.String(),
		"currency":    currency,
		"description": description,
	})
	if err != nil {
		return nil, err
	}

	return &model.PaymentAuthorization{
		AuthorizationID: resp.Data.AuthorizationID,
		Amount:          amount,
		Currency:        currency,
		CreatedAt:       time.Now(),
	}, nil
}

// Capture settles a previously placed authorization.
func (g *RestGateway) Capture(ctx context.Context, authorizationID string, amount decimal.Decimal) (*model.CaptureReceipt, error) {
	resp, err := g.post(ctx, "/v1/captures", map[string]interface{}{
		"merchant_id":      g.merchantID,
		"authorization_id": authorizationID,
		"amount":           amount.String(),
	})
	if err != nil {
		return nil, err
	}

	return &model.CaptureReceipt{
		CaptureID:       resp.Data.CaptureID,
		AuthorizationID: authorizationID,
		Amount:          amount,
		Currency:        resp.Data.Currency,
		CapturedAt:      time.Now(),
	}, nil
}

// VoidAuthorization releases an uncaptured hold.
func (g *RestGateway) VoidAuthorization(ctx context.Context, authorizationID string) error {
	_, err := g.post(ctx, "/v1/authorizations/void", map[string]interface{}{
		"merchant_id":      g.merchantID,
		"authorization_id": authorizationID,
	})
	return err
}

// Refund returns a captured amount to the customer.
func (g *RestGateway) Refund(ctx context.Context, captureID string, amount decimal.Decimal) error {
	_, err := g.post(ctx, "/v1/refunds", map[string]interface{}{
		"merchant_id": g.merchantID,
		"capture_id":  captureID,
		"amount":      amount.String(),
	})
	return err
}

func (g *RestGateway) post(ctx context.Context, path string, payload map[string]interface{}) (*gatewayResponse, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.Payment("", fmt.Errorf("failed to marshal request data: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, domain.Payment("", fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, domain.Payment("", fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.Payment("", fmt.Errorf("failed to read response body: %w", err))
	}

	var response gatewayResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, domain.Payment("", fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body)))
	}

	if resp.StatusCode >= 400 || response.Error.Code != "" {
		return nil, declineError(resp.StatusCode, response.Error.Code, response.Error.Message)
	}

	return &response, nil
}

// declineError maps processor decline codes onto domain payment errors so the
// orchestration layer can surface them without knowing gateway wire details.
func declineError(status int, code, message string) error {
	base := fmt.Errorf("gateway declined: code %s, message: %s", code, message)

	switch code {
	case "card_expired", "expired_card":
		return domain.Payment(domain.PaymentCodeCardExpired, base)
	case "card_refused", "do_not_honor", "insufficient_funds":
		return domain.Payment(domain.PaymentCodeCardRefused, base)
	case "cvn_check_failed", "incorrect_cvc":
		return domain.Payment(domain.PaymentCodeCVNCheckFailed, base)
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return domain.Payment(domain.PaymentCodeGatewayIdentity, base)
	}
	return domain.Payment("", base)
}
