package safety

import (
	"context"
	"testing"
	"time"

	"github.com/japap-media/server/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddress(t *testing.T) {
	a, err := NormalizeAddress("10.0.0.7")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.7/32", a)

	a, err = NormalizeAddress("10.0.3.0/16")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/16", a)

	_, err = NormalizeAddress("nope")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestFirewallBlocks(t *testing.T) {
	ctx := context.Background()
	f := NewFirewall(NewMemoryBlockStore(), nil)

	entry, err := f.CreateBlock(ctx, "192.168.0.0/24", "spam wave", 0)
	require.NoError(t, err)

	assert.True(t, f.IsBlocked("192.168.0.55"))
	assert.False(t, f.IsBlocked("192.168.1.1"))
	assert.False(t, f.IsBlocked("garbage"))

	require.NoError(t, f.DeleteBlock(ctx, entry.Id))
	assert.False(t, f.IsBlocked("192.168.0.55"))
}

func TestFirewallIgnoresExpiredBlocks(t *testing.T) {
	f := NewFirewall(NewMemoryBlockStore(), nil)
	_, err := f.CreateBlock(context.Background(), "10.1.1.1", "", time.Now().Add(-time.Minute).UnixMilli())
	require.NoError(t, err)
	assert.False(t, f.IsBlocked("10.1.1.1"))
}

func TestFirewallSyncsBetweenInstances(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := events.NewBus()
	store := NewMemoryBlockStore()
	a := NewFirewall(store, bus)
	b := NewFirewall(store, bus)

	done := make(chan struct{})
	sub := bus.Subscribe(ctx)
	go func() {
		b.Run(sub)
		close(done)
	}()

	entry, err := a.CreateBlock(ctx, "172.16.0.1", "", 0)
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return b.IsBlocked("172.16.0.1") }, time.Second, 10*time.Millisecond)

	require.NoError(t, a.DeleteBlock(ctx, entry.Id))
	assert.Eventually(t, func() bool { return !b.IsBlocked("172.16.0.1") }, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestFirewallLoad(t *testing.T) {
	store := NewMemoryBlockStore()
	require.NoError(t, store.Insert(context.Background(), &BlockEntry{Id: 1, Address: "8.8.8.0/24"}))

	f := NewFirewall(store, nil)
	require.NoError(t, f.Load(context.Background()))
	assert.True(t, f.IsBlocked("8.8.8.8"))
}
