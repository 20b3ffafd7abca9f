package cart

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftpack/packstore/internal/domain"
)

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, time.Hour), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	cart := domain.NewCart("sess-42")
	cart.AddItem(domain.LineItem{ProductID: "mailer-box", UnitPrice: 349, Quantity: 2})
	cart.AddItem(domain.LineItem{ProductID: "tape-roll", UnitPrice: 120, Quantity: 1, Variant: map[string]string{"width": "48mm"}})

	require.NoError(t, store.Save(ctx, cart))

	loaded, err := store.Load(ctx, "sess-42")
	require.NoError(t, err)
	assert.Equal(t, "sess-42", loaded.SessionID)
	assert.Len(t, loaded.Items, 2)
	assert.Equal(t, int64(818), loaded.Subtotal())
}

func TestRedisStore_LoadMissing(t *testing.T) {
	store, _ := setupRedisStore(t)

	cart, err := store.Load(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, cart)
}

func TestRedisStore_MalformedSnapshot(t *testing.T) {
	store, mr := setupRedisStore(t)
	require.NoError(t, mr.Set(cartKey("sess-bad"), "{not json"))

	cart, err := store.Load(context.Background(), "sess-bad")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, cart)
}

func TestRedisStore_Delete(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	cart := domain.NewCart("sess-9")
	cart.AddItem(domain.LineItem{ProductID: "p", UnitPrice: 100, Quantity: 1})
	require.NoError(t, store.Save(ctx, cart))

	require.NoError(t, store.Delete(ctx, "sess-9"))
	assert.False(t, mr.Exists(cartKey("sess-9")))
}

func TestRedisStore_SnapshotIsFullCart(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	cart := domain.NewCart("sess-7")
	cart.AddItem(domain.LineItem{ProductID: "p", UnitPrice: 100, Quantity: 3})
	require.NoError(t, store.Save(ctx, cart))

	raw, err := mr.Get(cartKey("sess-7"))
	require.NoError(t, err)

	var stored domain.Cart
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, cart.Items, stored.Items)
}
