package util

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacerBurstThenBlocks(t *testing.T) {
	p := NewPacer(50*time.Millisecond, 3)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Wait(ctx))
	}
	assert.Less(t, time.Since(start), 20*time.Millisecond, "burst should not block")

	require.NoError(t, p.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond, "fourth call should wait for a token")
}

func TestPacerWaitHonorsCancellation(t *testing.T) {
	p := NewPacer(10*time.Second, 1)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, p.Wait(ctx))

	cancel()
	err := p.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPacerThrottleBackoff(t *testing.T) {
	p := NewPacer(100*time.Millisecond, 1)

	wait := p.OnThrottle(0)
	assert.Equal(t, 150*time.Millisecond, wait)
	assert.Equal(t, 150*time.Millisecond, p.Interval())

	// Server Retry-After wins when longer
	wait = p.OnThrottle(2 * time.Second)
	assert.Equal(t, 2*time.Second, wait)

	p.Reset()
	assert.Equal(t, 100*time.Millisecond, p.Interval())
}

func TestPacerBackoffIsCapped(t *testing.T) {
	p := NewPacer(time.Second, 1)
	for i := 0; i < 20; i++ {
		p.OnThrottle(0)
	}
	assert.Equal(t, 5*time.Second, p.Interval())
}
