package tabs

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNoActiveTab is returned by Active when the browser reports no usable
// active tab (or the extension cannot see one).
var ErrNoActiveTab = errors.New("no active tab")

// Tab holds the metadata the daemon needs about one browser tab.
type Tab struct {
	ID     int    `json:"id"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

// Driver is the platform tab surface the synchronizer runs against.
// The production implementation forwards every call to the browser
// extension over the bridge; tests use an in-memory fake.
type Driver interface {
	// Query enumerates tabs whose URL matches pattern (trailing * wildcard).
	Query(ctx context.Context, pattern string) ([]Tab, error)

	// Active returns the active tab of the current window.
	Active(ctx context.Context) (Tab, error)

	// Create opens a new foregrounded tab at url.
	Create(ctx context.Context, url string) (Tab, error)

	// Update navigates tab id to url and optionally foregrounds it.
	Update(ctx context.Context, id int, url string, active bool) (Tab, error)

	// Send delivers a message into the page's execution context and
	// returns the page agent's reply. A transport error means the agent
	// is unreachable (tab gone, content script not yet injected).
	Send(ctx context.Context, id int, msg json.RawMessage) (json.RawMessage, error)
}
