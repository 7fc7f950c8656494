package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunFrameBusContract runs a suite of tests to verify that a FrameBus
// implementation adheres to the defined interface contract.
func RunFrameBusContract(t *testing.T, bus FrameBus) {
	ctx := context.Background()
	sessionID := "contract-session-" + time.Now().Format("20060102150405.000")

	receive := func(t *testing.T, ch <-chan []byte) []byte {
		t.Helper()
		select {
		case msg, ok := <-ch:
			require.True(t, ok, "channel closed unexpectedly")
			return msg
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for message")
			return nil
		}
	}

	t.Run("Publish reaches subscriber", func(t *testing.T) {
		ch, cancel, err := bus.Subscribe(ctx, sessionID)
		require.NoError(t, err)
		defer cancel()

		require.NoError(t, bus.Publish(ctx, sessionID, []byte(`{"seq":1}`)))
		require.NoError(t, bus.Publish(ctx, sessionID, []byte(`{"seq":2}`)))

		assert.Equal(t, `{"seq":1}`, string(receive(t, ch)))
		assert.Equal(t, `{"seq":2}`, string(receive(t, ch)))
	})

	t.Run("Sessions are isolated", func(t *testing.T) {
		ch, cancel, err := bus.Subscribe(ctx, sessionID+"-a")
		require.NoError(t, err)
		defer cancel()

		require.NoError(t, bus.Publish(ctx, sessionID+"-b", []byte("other")))
		require.NoError(t, bus.Publish(ctx, sessionID+"-a", []byte("mine")))

		assert.Equal(t, "mine", string(receive(t, ch)))
	})

	t.Run("Fan out to every subscriber", func(t *testing.T) {
		ch1, cancel1, err := bus.Subscribe(ctx, sessionID)
		require.NoError(t, err)
		defer cancel1()
		ch2, cancel2, err := bus.Subscribe(ctx, sessionID)
		require.NoError(t, err)
		defer cancel2()

		require.NoError(t, bus.Publish(ctx, sessionID, []byte("both")))

		assert.Equal(t, "both", string(receive(t, ch1)))
		assert.Equal(t, "both", string(receive(t, ch2)))
	})

	t.Run("Cancel closes the channel", func(t *testing.T) {
		ch, cancel, err := bus.Subscribe(ctx, sessionID)
		require.NoError(t, err)
		cancel()

		select {
		case _, ok := <-ch:
			for ok {
				_, ok = <-ch
			}
		case <-time.After(2 * time.Second):
			t.Fatal("channel not closed after cancel")
		}

		// Publishing with no subscribers left is not an error.
		assert.NoError(t, bus.Publish(ctx, sessionID, []byte("nobody")))
	})
}
