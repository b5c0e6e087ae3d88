package connectivity

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_StartsOffline(t *testing.T) {
	monitor := NewMonitor(func(context.Context) error { return nil }, time.Minute)
	assert.False(t, monitor.Online())
}

func TestMonitor_FirstProbeRunsImmediately(t *testing.T) {
	var calls atomic.Int32
	monitor := NewMonitor(func(context.Context) error {
		calls.Add(1)
		return nil
	}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		monitor.Run(ctx)
		close(done)
	}()

	select {
	case online := <-monitor.Changes():
		assert.True(t, online)
	case <-time.After(2 * time.Second):
		t.Fatal("no connectivity change observed")
	}
	assert.True(t, monitor.Online())
	assert.Equal(t, int32(1), calls.Load())

	cancel()
	<-done
}

func TestMonitor_EmitsOnlyOnTransitions(t *testing.T) {
	// Probe sequence: ok, ok, fail, ok. Only three transitions should be
	// emitted: the initial online, the drop, and the recovery.
	results := []error{nil, nil, fmt.Errorf("unreachable"), nil}
	var step atomic.Int32
	probe := func(context.Context) error {
		i := int(step.Add(1)) - 1
		if i >= len(results) {
			i = len(results) - 1
		}
		return results[i]
	}

	monitor := NewMonitor(probe, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go monitor.Run(ctx)

	var seen []bool
	for len(seen) < 3 {
		select {
		case online := <-monitor.Changes():
			seen = append(seen, online)
		case <-ctx.Done():
			t.Fatalf("timed out after %d transitions: %v", len(seen), seen)
		}
	}

	assert.Equal(t, []bool{true, false, true}, seen)
}

func TestMonitor_DefaultInterval(t *testing.T) {
	monitor := NewMonitor(func(context.Context) error { return nil }, 0)
	require.Equal(t, defaultInterval, monitor.interval)
}
