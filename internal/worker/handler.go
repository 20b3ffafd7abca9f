package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/craftpack/packstore/internal/domain"
	"github.com/craftpack/packstore/internal/receipt"
)

// FulfillmentHandler processes order.created events. It decrements
// stock for every line, marks the order paid, and emails the receipt.
// A stock shortage rolls back the lines already decremented and
// cancels the order instead.
type FulfillmentHandler struct {
	emailServiceURL     string
	ordersServiceURL    string
	inventoryServiceURL string
	httpClient          *http.Client
	logger              *slog.Logger
}

func NewFulfillmentHandler(emailServiceURL, ordersServiceURL, inventoryServiceURL string, client *http.Client, logger *slog.Logger) *FulfillmentHandler {
	return &FulfillmentHandler{
		emailServiceURL:     emailServiceURL,
		ordersServiceURL:    ordersServiceURL,
		inventoryServiceURL: inventoryServiceURL,
		httpClient:          client,
		logger:              logger,
	}
}

type decrementedItem struct {
	ProductID string
	Quantity  int
}

func (h *FulfillmentHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order created event: %w", err)
	}

	h.logger.Info("processing order created event", "order_id", event.OrderID, "order_number", event.OrderNumber)

	decremented, err := h.decrementStock(ctx, event)
	if err != nil {
		h.logger.Error("failed to decrement stock", "error", err, "order_id", event.OrderID)

		h.restock(ctx, decremented)

		if err := h.updateOrderStatus(ctx, event.OrderID, domain.OrderStatusCancelled); err != nil {
			h.logger.Error("failed to cancel order", "error", err, "order_id", event.OrderID)
			return fmt.Errorf("cancel order after stock failure: %w", err)
		}

		if err := h.sendCancellationEmail(ctx, event); err != nil {
			h.logger.Error("failed to send cancellation email", "error", err, "order_id", event.OrderID)
		}

		h.logger.Info("order cancelled due to insufficient stock", "order_id", event.OrderID)
		return nil
	}

	if err := h.updateOrderStatus(ctx, event.OrderID, domain.OrderStatusPaid); err != nil {
		h.logger.Error("failed to update order status", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("update order status: %w", err)
	}

	// The status update commits the fulfillment: a receipt failure must
	// not push the event back onto the topic, or redelivery would
	// decrement stock a second time.
	if err := h.sendReceiptEmail(ctx, event); err != nil {
		h.logger.Error("failed to send receipt email", "error", err, "order_id", event.OrderID)
	}

	h.logger.Info("order fulfilled", "order_id", event.OrderID)
	return nil
}

func (h *FulfillmentHandler) decrementStock(ctx context.Context, event domain.OrderCreatedEvent) ([]decrementedItem, error) {
	var decremented []decrementedItem

	for _, item := range event.Items {
		body := map[string]int{"quantity": item.Quantity}
		data, err := json.Marshal(body)
		if err != nil {
			return decremented, fmt.Errorf("marshal decrement request: %w", err)
		}

		url := fmt.Sprintf("%s/stock/%s/decrement", h.inventoryServiceURL, item.ProductID)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return decremented, fmt.Errorf("create decrement request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := h.httpClient.Do(req)
		if err != nil {
			return decremented, fmt.Errorf("decrement stock for product %s: %w", item.ProductID, err)
		}
		_ = resp.Body.Close()

		if resp.StatusCode == http.StatusConflict {
			return decremented, fmt.Errorf("insufficient stock for product %s", item.ProductID)
		}

		if resp.StatusCode != http.StatusOK {
			return decremented, fmt.Errorf("inventory service returned status %d for product %s", resp.StatusCode, item.ProductID)
		}

		decremented = append(decremented, decrementedItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	return decremented, nil
}

func (h *FulfillmentHandler) restock(ctx context.Context, decremented []decrementedItem) {
	for _, item := range decremented {
		body := map[string]int{"quantity": item.Quantity}
		data, err := json.Marshal(body)
		if err != nil {
			h.logger.Error("failed to marshal restock request", "error", err, "product_id", item.ProductID)
			continue
		}

		url := fmt.Sprintf("%s/stock/%s/restock", h.inventoryServiceURL, item.ProductID)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			h.logger.Error("failed to create restock request", "error", err, "product_id", item.ProductID)
			continue
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := h.httpClient.Do(req)
		if err != nil {
			h.logger.Error("failed to restock", "error", err, "product_id", item.ProductID)
			continue
		}
		_ = resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			h.logger.Error("failed to restock", "status", resp.StatusCode, "product_id", item.ProductID)
		}
	}
}

func (h *FulfillmentHandler) sendReceiptEmail(ctx context.Context, event domain.OrderCreatedEvent) error {
	if event.CustomerEmail == "" {
		h.logger.Info("no customer email on order, skipping receipt", "order_id", event.OrderID)
		return nil
	}

	body := map[string]string{
		"to":      event.CustomerEmail,
		"subject": "Receipt for order " + event.OrderNumber,
		"body": fmt.Sprintf("Thank you for your order %s. Total charged: %s.",
			event.OrderNumber, receipt.FormatCents(event.Total)),
	}

	return h.sendEmail(ctx, body)
}

func (h *FulfillmentHandler) sendCancellationEmail(ctx context.Context, event domain.OrderCreatedEvent) error {
	if event.CustomerEmail == "" {
		return nil
	}

	body := map[string]string{
		"to":      event.CustomerEmail,
		"subject": "Order " + event.OrderNumber + " cancelled",
		"body": fmt.Sprintf("Your order %s was cancelled because an item went out of stock. The charge of %s will be refunded.",
			event.OrderNumber, receipt.FormatCents(event.Total)),
	}

	return h.sendEmail(ctx, body)
}

func (h *FulfillmentHandler) sendEmail(ctx context.Context, body map[string]string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.emailServiceURL+"/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}

	return nil
}

func (h *FulfillmentHandler) updateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	body := map[string]string{
		"status": string(status),
	}

	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/orders/%s/status", h.ordersServiceURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("orders service returned status %d", resp.StatusCode)
	}

	return nil
}
