package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLease_SingleHolder(t *testing.T) {
	srv := miniredis.RunT(t)
	ctx := context.Background()

	client, err := Connect(ctx, srv.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	a := NewLease(client, "api-1")
	b := NewLease(client, "api-2")

	ok, err := a.Acquire(ctx, "mark_overdue", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Acquire(ctx, "mark_overdue", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second instance must not run the same sweep")

	require.NoError(t, b.Release(ctx, "mark_overdue"))
	assert.True(t, srv.Exists(leaseKeyPrefix+"mark_overdue"), "release by a non-owner is a no-op")

	require.NoError(t, a.Release(ctx, "mark_overdue"))
	ok, err = b.Acquire(ctx, "mark_overdue", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLease_Expires(t *testing.T) {
	srv := miniredis.RunT(t)
	ctx := context.Background()
	client, err := Connect(ctx, srv.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	ok, err := NewLease(client, "api-1").Acquire(ctx, "auto_cancel_unpaid", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	srv.FastForward(31 * time.Second)
	ok, err = NewLease(client, "api-2").Acquire(ctx, "auto_cancel_unpaid", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLease_WithoutClientAlwaysGrants(t *testing.T) {
	var l *Lease
	ok, err := l.Acquire(context.Background(), "any", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, l.Release(context.Background(), "any"))

	ok, err = NewLease(nil, "solo").Acquire(context.Background(), "any", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConnect_Unreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	_, err := Connect(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
