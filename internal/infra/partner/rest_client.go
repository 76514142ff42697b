package partner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud-commerce-portal/internal/domain"
	"cloud-commerce-portal/internal/domain/model"
)

// RestClient implements adapter.PartnerClient over the partner's HTTP API.
// Every call carries the app credentials; the partner scopes resources by
// the customer identifier embedded in the path.
type RestClient struct {
	baseURL string
	appID   string
	secret  string
	client  *http.Client
}

func NewRestClient(baseURL, appID, secret string) *RestClient {
	return &RestClient{
		baseURL: baseURL,
		appID:   appID,
		secret:  secret,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type orderLineItemDTO struct {
	LineItemNumber int    `json:"lineItemNumber"`
	OfferID        string `json:"offerId"`
	Quantity       int    `json:"quantity"`
	SubscriptionID string `json:"subscriptionId,omitempty"`
}

type orderDTO struct {
	ID                  string             `json:"id,omitempty"`
	ReferenceCustomerID string             `json:"referenceCustomerId"`
	LineItems           []orderLineItemDTO `json:"lineItems"`
}

type subscriptionDTO struct {
	ID                string    `json:"id"`
	OfferID           string    `json:"offerId"`
	Quantity          int       `json:"quantity"`
	Status            string    `json:"status"`
	CommitmentEndDate time.Time `json:"commitmentEndDate"`
}

func (d subscriptionDTO) toModel() *model.UpstreamSubscription {
	return &model.UpstreamSubscription{
		ID:                d.ID,
		OfferID:           d.OfferID,
		Quantity:          d.Quantity,
		Status:            d.Status,
		CommitmentEndDate: d.CommitmentEndDate,
	}
}

type errorDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PlaceOrder submits a multi-line order and returns it with partner-assigned
// order and subscription identifiers filled in.
func (c *RestClient) PlaceOrder(ctx context.Context, customerID string, order *model.UpstreamOrder) (*model.UpstreamOrder, error) {
	dto := orderDTO{ReferenceCustomerID: order.ReferenceCustomerID}
	for _, li := range order.LineItems {
		dto.LineItems = append(dto.LineItems, orderLineItemDTO{
			LineItemNumber: li.LineItemNumber,
			OfferID:        li.OfferID,
			Quantity:       li.Quantity,
		})
	}

	var placed orderDTO
	path := fmt.Sprintf("/v1/customers/%s/orders", customerID)
	if err := c.do(ctx, "POST", path, dto, &placed); err != nil {
		return nil, err
	}

	result := &model.UpstreamOrder{
		ID:                  placed.ID,
		ReferenceCustomerID: placed.ReferenceCustomerID,
	}
	for _, li := range placed.LineItems {
		result.LineItems = append(result.LineItems, model.UpstreamOrderLineItem{
			LineItemNumber: li.LineItemNumber,
			OfferID:        li.OfferID,
			Quantity:       li.Quantity,
			SubscriptionID: li.SubscriptionID,
		})
	}
	return result, nil
}

// CancelOrder voids an order the partner has accepted but not yet billed.
func (c *RestClient) CancelOrder(ctx context.Context, customerID, orderID string) error {
	path := fmt.Sprintf("/v1/customers/%s/orders/%s/cancel", customerID, orderID)
	return c.do(ctx, "POST", path, nil, nil)
}

func (c *RestClient) GetSubscription(ctx context.Context, customerID, subscriptionID string) (*model.UpstreamSubscription, error) {
	var dto subscriptionDTO
	path := fmt.Sprintf("/v1/customers/%s/subscriptions/%s", customerID, subscriptionID)
	if err := c.do(ctx, "GET", path, nil, &dto); err != nil {
		return nil, err
	}
	return dto.toModel(), nil
}

// AddSeats adjusts the seat count of an active subscription. A negative count
// removes seats, which is how a failed seat purchase is reverted.
func (c *RestClient) AddSeats(ctx context.Context, customerID, subscriptionID string, count int) (*model.UpstreamSubscription, error) {
	var dto subscriptionDTO
	path := fmt.Sprintf("/v1/customers/%s/subscriptions/%s/seats", customerID, subscriptionID)
	if err := c.do(ctx, "POST", path, map[string]int{"delta": count}, &dto); err != nil {
		return nil, err
	}
	return dto.toModel(), nil
}

func (c *RestClient) RenewSubscription(ctx context.Context, customerID, subscriptionID string) (*model.UpstreamSubscription, error) {
	var dto subscriptionDTO
	path := fmt.Sprintf("/v1/customers/%s/subscriptions/%s/renew", customerID, subscriptionID)
	if err := c.do(ctx, "POST", path, nil, &dto); err != nil {
		return nil, err
	}
	return dto.toModel(), nil
}

func (c *RestClient) CancelRenewal(ctx context.Context, customerID, subscriptionID string) error {
	path := fmt.Sprintf("/v1/customers/%s/subscriptions/%s/renew/cancel", customerID, subscriptionID)
	return c.do(ctx, "POST", path, nil, nil)
}

func (c *RestClient) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return domain.Upstream(fmt.Errorf("failed to marshal request data: %w", err))
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return domain.Upstream(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-App-Id", c.appID)
	req.Header.Set("Authorization", "Bearer "+c.secret)

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Upstream(fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Upstream(fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode == http.StatusNotFound {
		return domain.Upstream(fmt.Errorf("%s %s: %w", method, path, domain.ErrNotFound))
	}
	if resp.StatusCode >= 400 {
		var e errorDTO
		_ = json.Unmarshal(body, &e)
		return domain.Upstream(fmt.Errorf("partner error: status %d, code %s, message: %s", resp.StatusCode, e.Code, e.Message))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return domain.Upstream(fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body)))
		}
	}
	return nil
}
