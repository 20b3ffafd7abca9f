package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/craftpack/packstore/internal/cart"
	"github.com/craftpack/packstore/internal/domain"
)

var (
	// ErrEmptyCart is returned when checkout is attempted with no items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrCheckoutInFlight rejects a second confirmation for a session
	// while one is still pending, so repeated submissions cannot create
	// duplicate orders.
	ErrCheckoutInFlight = errors.New("checkout already in progress")

	// ErrDiscountExceedsTotal rejects a discount larger than the order
	// total, which would otherwise persist a negative amount.
	ErrDiscountExceedsTotal = errors.New("discount exceeds order total")
)

// State of one checkout transaction. Completion and failure are
// instantaneous transitions back to Idle, so only these two states are
// ever observable.
type State string

const (
	StateIdle            State = "idle"
	StateAwaitingPayment State = "awaiting_payment"
)

// OrderStore persists confirmed orders. The storefront talks to the
// orders service through this port; tests substitute a fake.
type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
}

// PaymentDetails is the boundary-validated payment input for a
// confirmation.
type PaymentDetails struct {
	Method       domain.PaymentMethod
	Customer     domain.Customer
	Discount     int64
	DiscountCode string
	Notes        string
}

// Confirmer builds an order snapshot from the session cart, persists it,
// and clears the cart only after persistence succeeds. Per session the
// transaction moves Idle -> AwaitingPayment and then back to Idle:
// success clears the cart on the way, failure leaves it intact for
// retry. Whether the transaction completed or failed is carried by
// Confirm's return values.
type Confirmer struct {
	carts  *cart.Service
	orders OrderStore
	rates  Rates
	logger *slog.Logger

	mu       sync.Mutex
	inFlight map[string]State
}

func NewConfirmer(carts *cart.Service, orders OrderStore, rates Rates, logger *slog.Logger) *Confirmer {
	return &Confirmer{
		carts:    carts,
		orders:   orders,
		rates:    rates,
		logger:   logger,
		inFlight: make(map[string]State),
	}
}

// SessionState reports the current transaction state for a session.
func (c *Confirmer) SessionState(sessionID string) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if state, ok := c.inFlight[sessionID]; ok {
		return state
	}
	return StateIdle
}

// Confirm runs one checkout transaction for the session.
func (c *Confirmer) Confirm(ctx context.Context, sessionID string, payment PaymentDetails) (*domain.Order, error) {
	if err := c.begin(sessionID); err != nil {
		return nil, err
	}

	order, err := c.confirm(ctx, sessionID, payment)
	c.finish(sessionID)
	return order, err
}

func (c *Confirmer) confirm(ctx context.Context, sessionID string, payment PaymentDetails) (*domain.Order, error) {
	current, err := c.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	if current.IsEmpty() {
		return nil, ErrEmptyCart
	}

	totals := c.rates.ComputeTotals(current.Subtotal())

	if payment.Discount > totals.Total {
		return nil, ErrDiscountExceedsTotal
	}

	order := &domain.Order{
		Number:        newOrderNumber(),
		Items:         append([]domain.LineItem(nil), current.Items...),
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Shipping:      totals.Shipping,
		Discount:      payment.Discount,
		DiscountCode:  payment.DiscountCode,
		Total:         totals.Total - payment.Discount,
		PaymentMethod: payment.Method,
		PaymentStatus: domain.PaymentStatusPaid,
		Customer:      payment.Customer,
		Notes:         payment.Notes,
		Status:        domain.OrderStatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	created, err := c.orders.Create(ctx, order)
	if err != nil {
		// The cart is untouched so the user can retry.
		return nil, fmt.Errorf("persist order: %w", err)
	}

	// At-most-once side effects: the cart is cleared only after the
	// order is confirmed persisted.
	if err := c.carts.Clear(ctx, sessionID); err != nil {
		c.logger.Error("failed to clear cart after checkout", "error", err, "session_id", sessionID, "order_number", created.Number)
	}

	c.logger.Info("checkout confirmed", "session_id", sessionID, "order_number", created.Number, "total", created.Total)
	return created, nil
}

func (c *Confirmer) begin(sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.inFlight[sessionID]; ok {
		return ErrCheckoutInFlight
	}
	c.inFlight[sessionID] = StateAwaitingPayment
	return nil
}

// finish returns the session to Idle. Entries must not outlive their
// transaction or the map would grow with every completed checkout.
func (c *Confirmer) finish(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.inFlight, sessionID)
}

// newOrderNumber generates a short human-readable order code. The full
// uuid stays with the persistence layer.
func newOrderNumber() string {
	id := strings.ToUpper(uuid.New().String())
	return "PS-" + id[:8]
}
