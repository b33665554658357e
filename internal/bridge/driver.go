package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/seekmark/seekmark/internal/tabs"
)

// Ops the extension side implements with chrome.tabs.* calls.
const (
	OpQuery  = "tabs.query"
	OpActive = "tabs.active"
	OpCreate = "tabs.create"
	OpUpdate = "tabs.update"
	OpSend   = "tabs.send"
)

type queryParams struct {
	Pattern string `json:"pattern"`
}

type createParams struct {
	URL string `json:"url"`
}

type updateParams struct {
	ID     int    `json:"id"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

type sendParams struct {
	ID      int             `json:"id"`
	Message json.RawMessage `json:"message"`
}

type tabResult struct {
	Tab tabs.Tab `json:"tab"`
}

type tabsResult struct {
	Tabs []tabs.Tab `json:"tabs"`
}

type sendResult struct {
	Response json.RawMessage `json:"response"`
}

// Driver implements tabs.Driver by forwarding every call over the bridge.
type Driver struct {
	bridge *Bridge
}

// NewDriver wraps a bridge as the tab driver.
func NewDriver(b *Bridge) *Driver {
	return &Driver{bridge: b}
}

var _ tabs.Driver = (*Driver)(nil)

func (d *Driver) Query(ctx context.Context, pattern string) ([]tabs.Tab, error) {
	data, err := d.bridge.Call(ctx, OpQuery, queryParams{Pattern: pattern})
	if err != nil {
		return nil, err
	}

	var res tabsResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("bridge: decode %s result: %w", OpQuery, err)
	}
	return res.Tabs, nil
}

func (d *Driver) Active(ctx context.Context) (tabs.Tab, error) {
	data, err := d.bridge.Call(ctx, OpActive, struct{}{})
	if err != nil {
		if strings.Contains(err.Error(), "no active tab") {
			return tabs.Tab{}, tabs.ErrNoActiveTab
		}
		return tabs.Tab{}, err
	}

	var res tabResult
	if err := json.Unmarshal(data, &res); err != nil {
		return tabs.Tab{}, fmt.Errorf("bridge: decode %s result: %w", OpActive, err)
	}
	return res.Tab, nil
}

func (d *Driver) Create(ctx context.Context, url string) (tabs.Tab, error) {
	data, err := d.bridge.Call(ctx, OpCreate, createParams{URL: url})
	if err != nil {
		return tabs.Tab{}, err
	}

	var res tabResult
	if err := json.Unmarshal(data, &res); err != nil {
		return tabs.Tab{}, fmt.Errorf("bridge: decode %s result: %w", OpCreate, err)
	}
	return res.Tab, nil
}

func (d *Driver) Update(ctx context.Context, id int, url string, active bool) (tabs.Tab, error) {
	data, err := d.bridge.Call(ctx, OpUpdate, updateParams{ID: id, URL: url, Active: active})
	if err != nil {
		return tabs.Tab{}, err
	}

	var res tabResult
	if err := json.Unmarshal(data, &res); err != nil {
		return tabs.Tab{}, fmt.Errorf("bridge: decode %s result: %w", OpUpdate, err)
	}
	return res.Tab, nil
}

func (d *Driver) Send(ctx context.Context, id int, msg json.RawMessage) (json.RawMessage, error) {
	data, err := d.bridge.Call(ctx, OpSend, sendParams{ID: id, Message: msg})
	if err != nil {
		return nil, err
	}

	var res sendResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("bridge: decode %s result: %w", OpSend, err)
	}
	return res.Response, nil
}
