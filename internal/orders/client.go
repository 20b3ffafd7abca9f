package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/craftpack/packstore/internal/domain"
)

// Client is the storefront's HTTP client for the orders service. It
// satisfies the checkout confirmer's order-store port.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

func (c *Client) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	payload := createOrderRequest{
		Number:        order.Number,
		Items:         order.Items,
		Customer:      order.Customer,
		Subtotal:      order.Subtotal,
		Tax:           order.Tax,
		Shipping:      order.Shipping,
		Discount:      order.Discount,
		DiscountCode:  order.DiscountCode,
		TotalAmount:   order.Total,
		PaymentMethod: string(order.PaymentMethod),
		Notes:         order.Notes,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post order: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Error != "" {
			return nil, fmt.Errorf("orders service: %s", errBody.Error)
		}
		return nil, fmt.Errorf("orders service returned status %d", resp.StatusCode)
	}

	var created domain.Order
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("decode created order: %w", err)
	}

	return &created, nil
}
