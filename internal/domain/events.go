package domain

import "time"

// OrderCreatedEvent is published to Kafka after an order is persisted.
// The fulfillment worker consumes it to decrement stock and send the
// receipt email.
type OrderCreatedEvent struct {
	OrderID       string        `json:"order_id"`
	OrderNumber   string        `json:"order_number"`
	Items         []LineItem    `json:"items"`
	Total         int64         `json:"total"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	CustomerEmail string        `json:"customer_email,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}
