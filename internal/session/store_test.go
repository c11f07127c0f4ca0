package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGet(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	err := store.Put(ctx, &CheckoutSession{
		OrderID:          "ORDER-1",
		SessionID:        "SESSION123",
		SuccessIndicator: "IND456",
		CreatedAt:        time.Now(),
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, "ORDER-1")
	require.NoError(t, err)
	assert.Equal(t, "SESSION123", got.SessionID)
	assert.Equal(t, "IND456", got.SuccessIndicator)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	_, err := store.Get(context.Background(), "ORDER-unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(10 * time.Millisecond)
	ctx := context.Background()

	err := store.Put(ctx, &CheckoutSession{OrderID: "ORDER-2", SuccessIndicator: "IND"})
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = store.Get(ctx, "ORDER-2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_NewCheckoutReplacesSession(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &CheckoutSession{OrderID: "ORDER-3", SuccessIndicator: "OLD"}))
	require.NoError(t, store.Put(ctx, &CheckoutSession{OrderID: "ORDER-3", SuccessIndicator: "NEW"}))

	got, err := store.Get(ctx, "ORDER-3")
	require.NoError(t, err)
	assert.Equal(t, "NEW", got.SuccessIndicator)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &CheckoutSession{OrderID: "ORDER-4", SuccessIndicator: "IND"}))
	require.NoError(t, store.Delete(ctx, "ORDER-4"))

	_, err := store.Get(ctx, "ORDER-4")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is not an error
	assert.NoError(t, store.Delete(ctx, "ORDER-4"))
}

func TestMemoryStore_RejectsEmptyOrderID(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	assert.Error(t, store.Put(context.Background(), &CheckoutSession{}))
	assert.Error(t, store.Put(context.Background(), nil))
}
