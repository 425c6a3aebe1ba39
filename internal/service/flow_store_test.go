package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFlowStoreTakeIsSingleUse(t *testing.T) {
	store := NewMemoryFlowStore()
	ctx := context.Background()

	fs := FlowState{State: "s1", Verifier: "v1", UserID: 7, CreatedAt: time.Now()}
	require.NoError(t, store.Save(ctx, "sess", PlatformTwitter, fs))

	got, err := store.Take(ctx, "sess", PlatformTwitter)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "s1", got.State)
	assert.Equal(t, "v1", got.Verifier)

	got, err = store.Take(ctx, "sess", PlatformTwitter)
	require.NoError(t, err)
	assert.Nil(t, got, "second take must find nothing")
}

func TestMemoryFlowStoreSaveOverwritesPendingAttempt(t *testing.T) {
	store := NewMemoryFlowStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess", PlatformTwitter, FlowState{State: "first", CreatedAt: time.Now()}))
	require.NoError(t, store.Save(ctx, "sess", PlatformTwitter, FlowState{State: "second", CreatedAt: time.Now()}))

	got, err := store.Take(ctx, "sess", PlatformTwitter)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "second", got.State)
}

func TestMemoryFlowStoreExpiresAbandonedFlows(t *testing.T) {
	store := NewMemoryFlowStore()
	ctx := context.Background()

	stale := FlowState{State: "s1", Verifier: "v1", CreatedAt: time.Now().Add(-FlowTTL - time.Minute)}
	require.NoError(t, store.Save(ctx, "sess", PlatformTwitter, stale))

	got, err := store.Take(ctx, "sess", PlatformTwitter)
	require.NoError(t, err)
	assert.Nil(t, got, "expired flow must behave as never started")
}

func TestMemoryFlowStoreKeysBySessionAndPlatform(t *testing.T) {
	store := NewMemoryFlowStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess-a", PlatformTwitter, FlowState{State: "a", CreatedAt: time.Now()}))
	require.NoError(t, store.Save(ctx, "sess-a", PlatformFacebook, FlowState{State: "b", CreatedAt: time.Now()}))

	got, err := store.Take(ctx, "sess-a", PlatformFacebook)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "b", got.State)

	got, err = store.Take(ctx, "sess-b", PlatformTwitter)
	require.NoError(t, err)
	assert.Nil(t, got)
}
