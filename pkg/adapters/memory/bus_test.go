package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/ripple/pkg/adapters/memory"
	"github.com/aretw0/ripple/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_Contract(t *testing.T) {
	ports.RunFrameBusContract(t, memory.NewBus())
}

func TestBus_DropsWhenFull(t *testing.T) {
	bus := memory.NewBus(memory.WithBufferSize(1))
	ctx := context.Background()

	ch, cancel, err := bus.Subscribe(ctx, "s")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, bus.Publish(ctx, "s", []byte("first")))
	require.NoError(t, bus.Publish(ctx, "s", []byte("second")))

	assert.Equal(t, "first", string(<-ch))
	select {
	case msg := <-ch:
		t.Fatalf("expected the second payload to be dropped, got %q", msg)
	default:
	}
}

func TestBus_CancelIsIdempotent(t *testing.T) {
	bus := memory.NewBus()
	ctx := context.Background()

	_, cancel, err := bus.Subscribe(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 1, bus.Subscribers("s"))

	cancel()
	assert.NotPanics(t, assert.PanicTestFunc(cancel))
	assert.Equal(t, 0, bus.Subscribers("s"))
}
