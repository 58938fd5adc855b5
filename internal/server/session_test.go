package server

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tokenScope/internal/lifecycle"
)

func TestFrameQueueDropsOldestWhenFull(t *testing.T) {
	q := newFrameQueue(4)
	for i := 0; i < 6; i++ {
		q.put(sessionFrame{Type: FrameError, Error: fmt.Sprintf("frame %d", i)})
	}

	frames := q.take()
	require.Len(t, frames, 4)
	require.Equal(t, "frame 2", frames[0].Error)
	require.Equal(t, "frame 5", frames[3].Error)
	require.Equal(t, 2, q.dropped)
	require.Empty(t, q.take())
}

func TestStateChangesDoNotBlockOnStalledWriter(t *testing.T) {
	sess := &session{ctx: context.Background(), outbox: newFrameQueue(outboxSize)}
	ctrl := lifecycle.New(&stubFetcher{fetch: succeed}, lifecycle.WithOnChange(sess.pushState))

	// Nothing drains the outbox, as with a client that stopped reading.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < outboxSize*3; i++ {
			ctrl.Input(fmt.Sprintf("0x%d", i))
		}
		ctrl.Clear()
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("state changes blocked on a full outbox")
	}

	frames := sess.outbox.take()
	require.Len(t, frames, outboxSize)
	last := frames[len(frames)-1]
	require.Equal(t, FrameState, last.Type)
	require.Equal(t, lifecycle.StatusIdle, last.State.Status)
	require.Empty(t, last.State.Address)
}
