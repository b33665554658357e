package agent

import (
	"context"
	"encoding/json"
	"fmt"
)

// Messenger is the slice of the tab driver the agent client needs.
type Messenger interface {
	Send(ctx context.Context, id int, msg json.RawMessage) (json.RawMessage, error)
}

// Client speaks the page-agent protocol to the content script inside a tab.
type Client struct {
	driver Messenger
}

// NewClient creates a page-agent client on top of a tab driver.
func NewClient(driver Messenger) *Client {
	return &Client{driver: driver}
}

// VideoState asks the page for its media element's position and title.
// ok:false means the page has no media element yet.
func (c *Client) VideoState(ctx context.Context, tabID int) (StateResponse, error) {
	raw, err := c.roundTrip(ctx, tabID, Message{Type: TypeGetVideoState})
	if err != nil {
		return StateResponse{}, err
	}

	var state StateResponse
	if err := json.Unmarshal(raw, &state); err != nil {
		return StateResponse{}, fmt.Errorf("agent: decode state response: %w", err)
	}
	return state, nil
}

// SeekTo commands the page to position its media element at t and play.
// It reports false for both an ok:false answer and a transport failure;
// the retry loop treats the two identically.
func (c *Client) SeekTo(ctx context.Context, tabID int, t float64) bool {
	raw, err := c.roundTrip(ctx, tabID, Message{Type: TypeSeekTo, Time: t})
	if err != nil {
		return false
	}

	var ack AckResponse
	if err := json.Unmarshal(raw, &ack); err != nil {
		return false
	}
	return ack.OK
}

func (c *Client) roundTrip(ctx context.Context, tabID int, msg Message) (json.RawMessage, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("agent: marshal %s: %w", msg.Type, err)
	}
	return c.driver.Send(ctx, tabID, raw)
}
