package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftpack/packstore/internal/cart"
	"github.com/craftpack/packstore/internal/domain"
)

type fakeOrderStore struct {
	mu      sync.Mutex
	created []*domain.Order
	err     error
	block   chan struct{}
}

func (f *fakeOrderStore) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	created := *order
	created.ID = uuid.New().String()
	f.created = append(f.created, &created)
	return &created, nil
}

func newTestConfirmer(store OrderStore) (*Confirmer, *cart.Service) {
	carts := cart.NewService(cart.NewMemoryStore())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewConfirmer(carts, store, Rates{TaxRateBps: 500, ShippingFee: 500}, logger), carts
}

func TestConfirmer_Confirm(t *testing.T) {
	store := &fakeOrderStore{}
	confirmer, carts := newTestConfirmer(store)
	ctx := context.Background()

	_, err := carts.AddItem(ctx, "sess-1", domain.LineItem{ProductID: "product-a", UnitPrice: 199, Quantity: 3})
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, "sess-1", domain.LineItem{ProductID: "product-b", UnitPrice: 249, Quantity: 2})
	require.NoError(t, err)

	order, err := confirmer.Confirm(ctx, "sess-1", PaymentDetails{
		Method:   domain.PaymentCard,
		Customer: domain.Customer{Name: "Ada", Email: "ada@example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1095), order.Subtotal)
	assert.Equal(t, int64(55), order.Tax)
	assert.Equal(t, int64(1650), order.Total)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, domain.PaymentStatusPaid, order.PaymentStatus)
	assert.NotEmpty(t, order.ID)
	assert.Regexp(t, `^PS-[0-9A-F]{8}$`, order.Number)
	assert.Len(t, order.Items, 2)

	// Cart is cleared after the persistence call succeeds.
	after, err := carts.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, after.IsEmpty())

	assert.Equal(t, StateIdle, confirmer.SessionState("sess-1"))
}

func TestConfirmer_CompletedSessionsAreEvicted(t *testing.T) {
	store := &fakeOrderStore{}
	confirmer, carts := newTestConfirmer(store)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		session := fmt.Sprintf("sess-%d", i)
		_, err := carts.AddItem(ctx, session, domain.LineItem{ProductID: "box", UnitPrice: 500, Quantity: 1})
		require.NoError(t, err)

		_, err = confirmer.Confirm(ctx, session, PaymentDetails{Method: domain.PaymentCard})
		require.NoError(t, err)
	}

	confirmer.mu.Lock()
	retained := len(confirmer.inFlight)
	confirmer.mu.Unlock()
	assert.Zero(t, retained, "completed checkouts must not pin guard entries")
	assert.Equal(t, StateIdle, confirmer.SessionState("sess-0"))
}

func TestConfirmer_DiscountExceedingTotal(t *testing.T) {
	store := &fakeOrderStore{}
	confirmer, carts := newTestConfirmer(store)
	ctx := context.Background()

	_, err := carts.AddItem(ctx, "sess-1", domain.LineItem{ProductID: "box", UnitPrice: 500, Quantity: 1})
	require.NoError(t, err)

	// Subtotal 500, tax 25, shipping 500: total 1025.
	order, err := confirmer.Confirm(ctx, "sess-1", PaymentDetails{Method: domain.PaymentCard, Discount: 2000})
	assert.ErrorIs(t, err, ErrDiscountExceedsTotal)
	assert.Nil(t, order)
	assert.Empty(t, store.created)

	// The cart survives and a sane discount goes through.
	order, err = confirmer.Confirm(ctx, "sess-1", PaymentDetails{Method: domain.PaymentCard, Discount: 1000})
	require.NoError(t, err)
	assert.Equal(t, int64(25), order.Total)
}

func TestConfirmer_EmptyCart(t *testing.T) {
	store := &fakeOrderStore{}
	confirmer, _ := newTestConfirmer(store)

	order, err := confirmer.Confirm(context.Background(), "sess-empty", PaymentDetails{Method: domain.PaymentCash})

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, order)
	assert.Empty(t, store.created)
	assert.Equal(t, StateIdle, confirmer.SessionState("sess-empty"))
}

func TestConfirmer_PersistenceFailureLeavesCartIntact(t *testing.T) {
	store := &fakeOrderStore{err: errors.New("orders service down")}
	confirmer, carts := newTestConfirmer(store)
	ctx := context.Background()

	_, err := carts.AddItem(ctx, "sess-1", domain.LineItem{ProductID: "box", UnitPrice: 500, Quantity: 1})
	require.NoError(t, err)

	_, err = confirmer.Confirm(ctx, "sess-1", PaymentDetails{Method: domain.PaymentCard})
	require.Error(t, err)

	cart, err := carts.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1, "failed checkout must not mutate the cart")

	// Back to Idle, so the session can retry.
	assert.Equal(t, StateIdle, confirmer.SessionState("sess-1"))

	store.err = nil
	_, err = confirmer.Confirm(ctx, "sess-1", PaymentDetails{Method: domain.PaymentCard})
	assert.NoError(t, err, "retry after failure should succeed")
}

func TestConfirmer_RejectsDuplicateSubmission(t *testing.T) {
	store := &fakeOrderStore{block: make(chan struct{})}
	confirmer, carts := newTestConfirmer(store)
	ctx := context.Background()

	_, err := carts.AddItem(ctx, "sess-1", domain.LineItem{ProductID: "box", UnitPrice: 500, Quantity: 1})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := confirmer.Confirm(ctx, "sess-1", PaymentDetails{Method: domain.PaymentCard})
		done <- err
	}()

	// Wait for the first confirmation to reach AwaitingPayment.
	for confirmer.SessionState("sess-1") != StateAwaitingPayment {
		time.Sleep(time.Millisecond)
	}

	_, err = confirmer.Confirm(ctx, "sess-1", PaymentDetails{Method: domain.PaymentCard})
	assert.ErrorIs(t, err, ErrCheckoutInFlight)

	close(store.block)
	require.NoError(t, <-done)
	assert.Len(t, store.created, 1, "exactly one order despite the double submit")
}
