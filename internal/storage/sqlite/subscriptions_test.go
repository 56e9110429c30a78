package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aifriend/aifriend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SubscriptionStore {
	t.Helper()
	store, err := NewSubscriptionStore(filepath.Join(t.TempDir(), "push.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sub(endpoint string) model.PushSubscription {
	return model.PushSubscription{
		Endpoint: endpoint,
		Keys:     model.PushSubscriptionKeys{P256dh: "p", Auth: "a"},
	}
}

func TestSubscriptionStore_SaveListDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Save(ctx, sub("https://push.example/one")))
	require.NoError(t, store.Save(ctx, sub("https://push.example/two")))

	got, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, store.Delete(ctx, "https://push.example/one"))
	got, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://push.example/two", got[0].Endpoint)
}

func TestSubscriptionStore_UpsertLastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	s := sub("https://push.example/one")
	require.NoError(t, store.Save(ctx, s))

	s.Keys.Auth = "rotated"
	require.NoError(t, store.Save(ctx, s))

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "rotated", got[0].Keys.Auth)
}

func TestSubscriptionStore_RejectsEmptyEndpoint(t *testing.T) {
	store := newTestStore(t)
	err := store.Save(context.Background(), model.PushSubscription{})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestSubscriptionStore_DeleteUnknownOK(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Delete(context.Background(), "https://push.example/none"))
}

func TestSubscriptionKey_Stable(t *testing.T) {
	a := SubscriptionKey("https://push.example/one")
	b := SubscriptionKey("https://push.example/one")
	c := SubscriptionKey("https://push.example/two")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
