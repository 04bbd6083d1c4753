package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDenylist_RevokeAndCheck(t *testing.T) {
	d := NewMemoryDenylist()
	ctx := context.Background()

	revoked, err := d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, d.Revoke(ctx, "jti-1", time.Minute))

	revoked, err = d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestMemoryDenylist_ExpiredEntry(t *testing.T) {
	d := NewMemoryDenylist()
	ctx := context.Background()

	require.NoError(t, d.Revoke(ctx, "jti-1", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	revoked, err := d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryDenylist_NonPositiveTTL(t *testing.T) {
	d := NewMemoryDenylist()
	ctx := context.Background()

	// A token already past its expiry needs no denylist entry
	require.NoError(t, d.Revoke(ctx, "jti-1", 0))

	revoked, err := d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}
