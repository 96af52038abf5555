package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tair/payment-service/internal/payment/domain"
	"github.com/tair/payment-service/pkg/logger"
)

// OrderServiceClient calls the order service's internal REST endpoints.
type OrderServiceClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOrderServiceClient creates a new order service client
func NewOrderServiceClient(baseURL string) *OrderServiceClient {
	return &OrderServiceClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   5 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// UpdatePaymentStatus tells the order service that an order's payment landed
// in the given terminal state ("PAID" or "FAILED").
func (c *OrderServiceClient) UpdatePaymentStatus(ctx context.Context, orderID, status string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	endpoint := fmt.Sprintf("%s/v1/order/internal/update-payment-status/%s?paymentStatus=%s",
		c.baseURL, url.PathEscape(orderID), url.QueryEscape(status))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call order service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("order service returned %d: %s", resp.StatusCode, body)
	}

	logger.Info(ctx).
		Str("order_id", orderID).
		Str("payment_status", status).
		Msg("Order payment status updated")

	return nil
}

// CreateOrderFromPayment asks the order service to create an order from the
// staged payment payload. It returns the new order's identifier.
func (c *OrderServiceClient) CreateOrderFromPayment(ctx context.Context, data *domain.OrderData) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	body, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal order data: %w", err)
	}

	endpoint := c.baseURL + "/v1/order/internal/create-from-payment"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call order service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("order service returned %d: %s", resp.StatusCode, respBody)
	}

	var result struct {
		OrderID string `json:"orderId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode order service response: %w", err)
	}
	if result.OrderID == "" {
		return "", fmt.Errorf("order service response missing orderId")
	}

	logger.Info(ctx).
		Str("order_id", result.OrderID).
		Msg("Order created from payment data")

	return result.OrderID, nil
}
