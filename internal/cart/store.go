package cart

import (
	"context"
	"errors"

	"github.com/craftpack/packstore/internal/domain"
)

// Store persists the session cart snapshot. The storefront writes the
// full cart back on every mutation and deletes the slot after a
// successful checkout.
type Store interface {
	Load(ctx context.Context, sessionID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// ErrNotFound is returned by Load when no snapshot exists for the
// session. Callers treat it as an empty cart.
var ErrNotFound = errors.New("cart not found")
