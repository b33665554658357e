package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seekmark/seekmark/internal/logger"
)

var (
	// ErrTimeout means the extension never answered within the command timeout.
	ErrTimeout = errors.New("bridge: command timed out")
	// ErrExpired means the command sat unanswered until the GC swept it.
	ErrExpired = errors.New("bridge: command expired")
)

// Command is one unit of work the extension pulls and executes with the
// browser tab APIs.
type Command struct {
	ID     string          `json:"id"`
	Op     string          `json:"op"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Result is the extension's answer to one Command, matched by ID.
type Result struct {
	ID    string          `json:"id"`
	OK    bool            `json:"ok"`
	Error string          `json:"error,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type pending struct {
	cmd      Command
	enqueued time.Time
	done     chan Result
}

// Bridge is the command channel between the daemon and the extension.
//
// Callers enqueue commands and suspend until the matching result arrives.
// The extension long-polls Pull for work and posts answers through Push.
// Nothing here knows about tabs or media; it is a correlated request/response
// pipe with a bounded lifetime per command.
type Bridge struct {
	mu       sync.Mutex
	queue    []*pending
	inflight map[string]*pending
	notify   chan struct{}
	lastSeen time.Time

	timeout time.Duration
	ttl     time.Duration
	logger  logger.Logger
}

// New creates a bridge. timeout bounds how long a caller waits for an
// answer; ttl bounds how long an unanswered command may linger before the
// GC fails it.
func New(timeout, ttl time.Duration, log logger.Logger) *Bridge {
	return &Bridge{
		inflight: make(map[string]*pending),
		notify:   make(chan struct{}, 1),
		timeout:  timeout,
		ttl:      ttl,
		logger:   log,
	}
}

// Call enqueues op for the extension and blocks until its result, the
// command timeout, or ctx cancellation. A failed or timed-out round trip
// is returned as an error; callers that treat transport failure as a soft
// miss (the seek retry loop) decide that themselves.
func (b *Bridge) Call(ctx context.Context, op string, params interface{}) (json.RawMessage, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("bridge: marshal params for %s: %w", op, err)
	}

	p := &pending{
		cmd: Command{
			ID:     uuid.NewString(),
			Op:     op,
			Params: raw,
		},
		enqueued: time.Now(),
		done:     make(chan Result, 1),
	}

	b.mu.Lock()
	b.queue = append(b.queue, p)
	b.inflight[p.cmd.ID] = p
	b.mu.Unlock()
	b.wake()

	b.logger.Debug("bridge command enqueued",
		logger.String("op", op),
		logger.String("id", p.cmd.ID))

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()

	select {
	case res := <-p.done:
		if !res.OK {
			if res.Error == "" {
				res.Error = "unspecified failure"
			}
			return nil, fmt.Errorf("bridge: %s failed: %s", op, res.Error)
		}
		return res.Data, nil

	case <-timer.C:
		b.drop(p.cmd.ID)
		return nil, ErrTimeout

	case <-ctx.Done():
		b.drop(p.cmd.ID)
		return nil, ctx.Err()
	}
}

// Pull hands queued commands to the extension, holding the request open up
// to wait when the queue is empty (long poll). It always returns a non-nil
// slice so the handler encodes [] rather than null.
func (b *Bridge) Pull(ctx context.Context, wait time.Duration) []Command {
	b.mu.Lock()
	b.lastSeen = time.Now()
	cmds := b.takeQueuedLocked()
	b.mu.Unlock()

	if len(cmds) > 0 {
		return cmds
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-b.notify:
			b.mu.Lock()
			b.lastSeen = time.Now()
			cmds = b.takeQueuedLocked()
			b.mu.Unlock()
			if len(cmds) > 0 {
				return cmds
			}
		case <-timer.C:
			return []Command{}
		case <-ctx.Done():
			return []Command{}
		}
	}
}

// Push delivers the extension's result to the waiting caller.
// Results for unknown ids (already timed out or swept) are dropped.
func (b *Bridge) Push(res Result) bool {
	b.mu.Lock()
	p, ok := b.inflight[res.ID]
	if ok {
		delete(b.inflight, res.ID)
	}
	b.lastSeen = time.Now()
	b.mu.Unlock()

	if !ok {
		b.logger.Debug("bridge result for unknown command dropped",
			logger.String("id", res.ID))
		return false
	}

	p.done <- res
	return true
}

// Connected reports whether the extension polled within window.
func (b *Bridge) Connected(window time.Duration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.lastSeen.IsZero() && time.Since(b.lastSeen) < window
}

// PruneExpired fails every pending command older than the TTL and returns
// how many were swept.
func (b *Bridge) PruneExpired(now time.Time) int {
	b.mu.Lock()
	var expired []*pending
	for id, p := range b.inflight {
		if now.Sub(p.enqueued) > b.ttl {
			delete(b.inflight, id)
			expired = append(expired, p)
		}
	}
	// Drop the queued entries of swept commands so they are never pulled.
	kept := b.queue[:0]
	for _, p := range b.queue {
		if _, alive := b.inflight[p.cmd.ID]; alive {
			kept = append(kept, p)
		}
	}
	b.queue = kept
	b.mu.Unlock()

	for _, p := range expired {
		p.done <- Result{ID: p.cmd.ID, OK: false, Error: ErrExpired.Error()}
	}

	return len(expired)
}

// Pending returns the number of commands awaiting an answer.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.inflight)
}

func (b *Bridge) takeQueuedLocked() []Command {
	cmds := make([]Command, 0, len(b.queue))
	for _, p := range b.queue {
		cmds = append(cmds, p.cmd)
	}
	b.queue = b.queue[:0]
	return cmds
}

func (b *Bridge) drop(id string) {
	b.mu.Lock()
	delete(b.inflight, id)
	kept := b.queue[:0]
	for _, p := range b.queue {
		if p.cmd.ID != id {
			kept = append(kept, p)
		}
	}
	b.queue = kept
	b.mu.Unlock()
}

func (b *Bridge) wake() {
	select {
	case b.notify <- struct{}{}:
	default:
	}
}
