package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/seekmark/seekmark/internal/logger"
)

func newTestBridge(timeout, ttl time.Duration) *Bridge {
	return New(timeout, ttl, logger.New("error", false))
}

func TestCallRoundTrip(t *testing.T) {
	b := newTestBridge(time.Second, time.Minute)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		cmds := b.Pull(context.Background(), time.Second)
		if len(cmds) != 1 {
			t.Errorf("Pull() = %d commands, want 1", len(cmds))
			return
		}
		if cmds[0].Op != OpQuery {
			t.Errorf("Pull() op = %q, want %q", cmds[0].Op, OpQuery)
		}
		b.Push(Result{
			ID:   cmds[0].ID,
			OK:   true,
			Data: json.RawMessage(`{"tabs":[]}`),
		})
	}()

	data, err := b.Call(context.Background(), OpQuery, queryParams{Pattern: "https://www.youtube.com/watch*"})
	if err != nil {
		t.Fatalf("Call() error: %v", err)
	}
	if string(data) != `{"tabs":[]}` {
		t.Errorf("Call() data = %s", data)
	}
	wg.Wait()

	if b.Pending() != 0 {
		t.Errorf("Pending() = %d after round trip, want 0", b.Pending())
	}
}

func TestCallFailureBecomesError(t *testing.T) {
	b := newTestBridge(time.Second, time.Minute)

	go func() {
		cmds := b.Pull(context.Background(), time.Second)
		if len(cmds) == 1 {
			b.Push(Result{ID: cmds[0].ID, OK: false, Error: "no active tab"})
		}
	}()

	_, err := b.Call(context.Background(), OpActive, struct{}{})
	if err == nil {
		t.Fatal("Call() with failed result should return error")
	}
}

func TestCallTimesOut(t *testing.T) {
	b := newTestBridge(20*time.Millisecond, time.Minute)

	_, err := b.Call(context.Background(), OpQuery, queryParams{})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Call() error = %v, want ErrTimeout", err)
	}
	if b.Pending() != 0 {
		t.Errorf("Pending() = %d after timeout, want 0", b.Pending())
	}
}

func TestPullLongPollPicksUpLateCommand(t *testing.T) {
	b := newTestBridge(time.Second, time.Minute)

	go func() {
		time.Sleep(20 * time.Millisecond)
		_, _ = b.Call(context.Background(), OpCreate, createParams{URL: "https://example.com"})
	}()

	cmds := b.Pull(context.Background(), time.Second)
	if len(cmds) != 1 {
		t.Fatalf("Pull() = %d commands, want 1", len(cmds))
	}
	b.Push(Result{ID: cmds[0].ID, OK: true, Data: json.RawMessage(`{"tab":{"id":1}}`)})
}

func TestPullEmptyQueueReturnsAfterWait(t *testing.T) {
	b := newTestBridge(time.Second, time.Minute)

	start := time.Now()
	cmds := b.Pull(context.Background(), 30*time.Millisecond)
	if len(cmds) != 0 {
		t.Errorf("Pull() = %v, want empty", cmds)
	}
	if time.Since(start) < 25*time.Millisecond {
		t.Error("Pull() returned before the long-poll window elapsed")
	}
}

func TestPushUnknownIDIsDropped(t *testing.T) {
	b := newTestBridge(time.Second, time.Minute)

	if b.Push(Result{ID: "nope", OK: true}) {
		t.Error("Push() of unknown id should report false")
	}
}

func TestConnectedTracksPolling(t *testing.T) {
	b := newTestBridge(time.Second, time.Minute)

	if b.Connected(time.Minute) {
		t.Error("Connected() before any poll should be false")
	}

	b.Pull(context.Background(), time.Millisecond)

	if !b.Connected(time.Minute) {
		t.Error("Connected() after a poll should be true")
	}
}

func TestPruneExpiredFailsWaiters(t *testing.T) {
	b := newTestBridge(5*time.Second, 10*time.Millisecond)

	errCh := make(chan error, 1)
	go func() {
		_, err := b.Call(context.Background(), OpQuery, queryParams{})
		errCh <- err
	}()

	// Wait until the command is pending, then sweep past its TTL.
	deadline := time.Now().Add(time.Second)
	for b.Pending() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("command never became pending")
		}
		time.Sleep(time.Millisecond)
	}

	swept := b.PruneExpired(time.Now().Add(time.Minute))
	if swept != 1 {
		t.Fatalf("PruneExpired() = %d, want 1", swept)
	}

	select {
	case err := <-errCh:
		if err == nil {
			t.Error("Call() should fail once its command is swept")
		}
	case <-time.After(time.Second):
		t.Fatal("Call() still blocked after sweep")
	}

	// Swept commands must not be handed to the extension anymore.
	cmds := b.Pull(context.Background(), time.Millisecond)
	if len(cmds) != 0 {
		t.Errorf("Pull() after sweep = %d commands, want 0", len(cmds))
	}
}
