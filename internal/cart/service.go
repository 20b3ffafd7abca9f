package cart

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/craftpack/packstore/internal/domain"
)

// Service applies cart mutations and writes the snapshot back to the
// store after every change. Concurrent loads of the same session are
// collapsed with singleflight.
type Service struct {
	store Store
	sfg   singleflight.Group
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Get returns the cart for the session, or a fresh empty cart when no
// snapshot exists.
func (s *Service) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(sessionID, func() (any, error) {
		cart, err := s.store.Load(ctx, sessionID)
		if errors.Is(err, ErrNotFound) {
			return domain.NewCart(sessionID), nil
		}
		if err != nil {
			return nil, err
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

func (s *Service) AddItem(ctx context.Context, sessionID string, item domain.LineItem) (*domain.Cart, error) {
	return s.mutate(ctx, sessionID, func(cart *domain.Cart) {
		cart.AddItem(item)
	})
}

func (s *Service) UpdateQuantity(ctx context.Context, sessionID, key string, quantity int) (*domain.Cart, error) {
	return s.mutate(ctx, sessionID, func(cart *domain.Cart) {
		cart.UpdateQuantity(key, quantity)
	})
}

func (s *Service) RemoveItem(ctx context.Context, sessionID, key string) (*domain.Cart, error) {
	return s.mutate(ctx, sessionID, func(cart *domain.Cart) {
		cart.RemoveItem(key)
	})
}

// Clear empties the cart and drops its persisted snapshot.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

func (s *Service) mutate(ctx context.Context, sessionID string, fn func(*domain.Cart)) (*domain.Cart, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	fn(cart)
	cart.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}
