package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := New()

	var got []string
	require.NoError(t, bus.Subscribe(WalletAlert, func(msg string) {
		got = append(got, msg)
	}))
	assert.True(t, bus.HasCallback(WalletAlert))
	assert.False(t, bus.HasCallback(PageStateChanged))

	bus.Publish(WalletAlert, "Change the network to Rinkeby.")
	bus.Publish(PageStateChanged, "ignored")

	assert.Equal(t, []string{"Change the network to Rinkeby."}, got)
}

func TestEventBus_Async(t *testing.T) {
	bus := New()

	var (
		mu    sync.Mutex
		total int
	)
	require.NoError(t, bus.SubscribeAsync(PageStateChanged, func(n int) {
		mu.Lock()
		total += n
		mu.Unlock()
	}, true))

	for i := 1; i <= 4; i++ {
		bus.Publish(PageStateChanged, i)
	}
	bus.WaitAsync()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 10, total)
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := New()

	calls := 0
	handler := func(string) { calls++ }
	require.NoError(t, bus.Subscribe(WalletAlert, handler))
	require.NoError(t, bus.Unsubscribe(WalletAlert, handler))

	bus.Publish(WalletAlert, "x")
	assert.Zero(t, calls)
	assert.Error(t, bus.Unsubscribe(WalletAlert, handler))
}
